// pay-by-plan/internal/scheduler/scheduler_test.go
package scheduler

import (
	"testing"
	"time"
)

func TestNotifyNeverBlocks(t *testing.T) {
	s := New(nil)

	done := make(chan struct{})
	go func() {
		// Второй и третий вызовы попадают в уже заполненный буфер
		// и должны молча сливаться с ожидающим запросом.
		s.Notify()
		s.Notify()
		s.Notify()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify заблокировался на заполненном буфере")
	}
}

func TestUntilNextMidnight(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	if got := untilNextMidnight(now); got != 30*time.Minute {
		t.Errorf("untilNextMidnight(23:30) = %v, ожидалось 30m", got)
	}

	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := untilNextMidnight(midnight); got != 24*time.Hour {
		t.Errorf("untilNextMidnight(00:00) = %v, ожидалось 24h", got)
	}
}
