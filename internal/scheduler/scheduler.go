// pay-by-plan/internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
)

// Scheduler запускает ежедневный обход просроченных напоминаний.
// Обход выполняется один раз в сутки после полуночи; ручной запуск
// (эндпоинт /api/reminders/process-due) приходит через Notify.
// Напоминания обрабатываются по одному, без внутреннего параллелизма.
type Scheduler struct {
	reminders *services.ReminderService
	notifyCh  chan struct{}
}

func New(reminders *services.ReminderService) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		notifyCh:  make(chan struct{}, 1),
	}
}

// Notify запрашивает немедленный обход. Не блокирует: если запрос уже
// стоит в очереди, повторный просто сливается с ним.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Обход уже запрошен, дублировать нечего
	}
}

// Start крутит цикл до отмены контекста. Первый обход выполняется сразу
// при старте - если процесс перезапустился после полуночи, сегодняшние
// напоминания не должны ждать до завтра.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Планировщик напоминаний запущен")

	s.run()

	for {
		timer := time.NewTimer(untilNextMidnight(time.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Планировщик напоминаний остановлен")
			return
		case <-timer.C:
			s.run()
		case <-s.notifyCh:
			timer.Stop()
			slog.Info("Обход запущен вручную")
			s.run()
		}
	}
}

func (s *Scheduler) run() {
	today := time.Now()
	if err := s.reminders.ProcessDue(today); err != nil {
		// Сюда попадают только ошибки хранилища: сбои доставки
		// планировщик не видит, они оседают в журнале уведомлений.
		slog.Error("Обход напоминаний не удался", "error", err)
	}
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
