// pay-by-plan/internal/services/reminder_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

func TestCreateReminderOnePerLayby(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	reminders := NewReminderService(db, nil)

	if _, err := reminders.Create(layby.ID, models.ReminderWeekly, date(2024, 2, 1)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := reminders.Create(layby.ID, models.ReminderDaily, date(2024, 2, 2))
	assertValidationError(t, err)
}

func TestCreateReminderRejectsUnknownFrequency(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	reminders := NewReminderService(db, nil)

	_, err := reminders.Create(layby.ID, "hourly", date(2024, 2, 1))
	assertValidationError(t, err)
}

func TestDueRemindersExactDateMatch(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	reminders := NewReminderService(db, nil)

	target := date(2024, 3, 10)
	reminder, err := reminders.Create(layby.ID, models.ReminderWeekly, target)
	if err != nil {
		t.Fatal(err)
	}

	// Накануне напоминание еще не назначено.
	due, err := reminders.DueReminders(target.AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("за день до даты не должно быть назначенных, получено %d", len(due))
	}

	// В сам день - ровно одно.
	due, err = reminders.DueReminders(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != reminder.ID {
		t.Errorf("на дату %v ожидалось одно напоминание, получено %d", target, len(due))
	}

	// На следующий день дата уже не совпадает: пропущенные не доставляются.
	due, err = reminders.DueReminders(target.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("после даты напоминание не назначено, получено %d", len(due))
	}
}

func TestDueRemindersSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	reminders := NewReminderService(db, nil)

	target := date(2024, 3, 10)
	reminder, err := reminders.Create(layby.ID, models.ReminderDaily, target)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reminders.ToggleActive(reminder); err != nil {
		t.Fatal(err)
	}

	due, err := reminders.DueReminders(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("выключенное напоминание не должно назначаться, получено %d", len(due))
	}
}

func TestAdvancePeriods(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	reminders := NewReminderService(db, nil)

	cases := []struct {
		frequency string
		from      time.Time
		want      time.Time
	}{
		{models.ReminderDaily, date(2024, 1, 15), date(2024, 1, 16)},
		{models.ReminderWeekly, date(2024, 1, 15), date(2024, 1, 22)},
		{models.ReminderBiweekly, date(2024, 1, 15), date(2024, 1, 29)},
		// "Месяц" - фиксированные 30 дней, без календарной магии.
		{models.ReminderMonthly, date(2024, 1, 31), date(2024, 3, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.frequency, func(t *testing.T) {
			layby := newTestLayby(t, db, user, "100.00")
			reminder, err := reminders.Create(layby.ID, tc.frequency, tc.from)
			if err != nil {
				t.Fatal(err)
			}
			if err := reminders.Advance(reminder); err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if !reminder.NextReminderDate.Equal(tc.want) {
				t.Errorf("Advance(%s) с %v = %v, ожидалось %v",
					tc.frequency, tc.from, reminder.NextReminderDate, tc.want)
			}
		})
	}
}

func TestProcessDueSendsAndAdvances(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	dispatcher := &fakeDispatcher{}
	reminders := NewReminderService(db, dispatcher)

	target := date(2024, 4, 1)
	reminder, err := reminders.Create(layby.ID, models.ReminderWeekly, target)
	if err != nil {
		t.Fatal(err)
	}

	if err := reminders.ProcessDue(target); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}

	if len(dispatcher.reminders) != 1 || dispatcher.reminders[0] != layby.ID {
		t.Errorf("ожидалась одна отправка для layby %d, получено %v", layby.ID, dispatcher.reminders)
	}

	var notifications []models.Notification
	if err := db.Where("reminder_id = ?", reminder.ID).Find(&notifications).Error; err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("ожидалась одна запись уведомления, получено %d", len(notifications))
	}
	if !notifications[0].IsSent {
		t.Error("после успешной доставки is_sent должен быть true")
	}
	if notifications[0].MessageID == "" {
		t.Error("у уведомления должен быть message_id")
	}

	var reloaded models.Reminder
	if err := db.First(&reloaded, reminder.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.NextReminderDate.Equal(target.AddDate(0, 0, 7)) {
		t.Errorf("расписание должно сдвинуться на неделю, получено %v", reloaded.NextReminderDate)
	}
}

func TestProcessDueAdvancesOnDispatchFailure(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	dispatcher := &fakeDispatcher{failSend: true}
	reminders := NewReminderService(db, dispatcher)

	target := date(2024, 4, 1)
	reminder, err := reminders.Create(layby.ID, models.ReminderDaily, target)
	if err != nil {
		t.Fatal(err)
	}

	if err := reminders.ProcessDue(target); err != nil {
		t.Fatalf("ошибка доставки не должна подниматься из ProcessDue: %v", err)
	}

	// Запись попытки остается с is_sent = false.
	var notifications []models.Notification
	if err := db.Where("reminder_id = ?", reminder.ID).Find(&notifications).Error; err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("ожидалась одна запись уведомления, получено %d", len(notifications))
	}
	if notifications[0].IsSent {
		t.Error("при неудачной доставке is_sent должен остаться false")
	}

	// Расписание сдвигается безусловно: повтора на ту же дату нет.
	var reloaded models.Reminder
	if err := db.First(&reloaded, reminder.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.NextReminderDate.Equal(target.AddDate(0, 0, 1)) {
		t.Errorf("расписание должно сдвинуться несмотря на ошибку, получено %v", reloaded.NextReminderDate)
	}
}

func TestResetSchedule(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	layby := newTestLayby(t, db, user, "100.00")
	reminders := NewReminderService(db, nil)

	reminder, err := reminders.Create(layby.ID, models.ReminderMonthly, date(2024, 1, 1))
	if err != nil {
		t.Fatal(err)
	}

	if err := reminders.Reset(reminder, date(2024, 5, 20)); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	var reloaded models.Reminder
	if err := db.First(&reloaded, reminder.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.NextReminderDate.Equal(date(2024, 5, 20)) {
		t.Errorf("после Reset дата = %v, ожидалось 2024-05-20", reloaded.NextReminderDate)
	}
}

func TestUpcomingReminders(t *testing.T) {
	db := setupTestDB(t)
	user := newTestUser(t, db)
	reminders := NewReminderService(db, nil)

	soon := newTestLayby(t, db, user, "100.00")
	later := newTestLayby(t, db, user, "200.00")

	today := models.DateOnly(time.Now())
	if _, err := reminders.Create(soon.ID, models.ReminderWeekly, today.AddDate(0, 0, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := reminders.Create(later.ID, models.ReminderWeekly, today.AddDate(0, 0, 20)); err != nil {
		t.Fatal(err)
	}

	upcoming, err := reminders.Upcoming(user.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 1 || upcoming[0].LaybyID != soon.ID {
		t.Errorf("в ближайшие 7 дней ожидалось одно напоминание, получено %d", len(upcoming))
	}
}
