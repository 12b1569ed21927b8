// pay-by-plan/internal/services/reminder_service.go
package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/internal/mailer"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// reminderPeriodDays - длина одного периода напоминания в днях.
// "monthly" - это ровно 30 дней, не календарный месяц: так ведет себя
// и расчет дат планов, и продвижение напоминаний.
var reminderPeriodDays = map[string]int{
	models.ReminderDaily:    1,
	models.ReminderWeekly:   7,
	models.ReminderBiweekly: 14,
	models.ReminderMonthly:  30,
}

// ReminderService управляет расписаниями напоминаний и журналом
// уведомлений. Отправка писем делегируется Dispatcher'у; его ошибки
// не фатальны и фиксируются в записи Notification.
type ReminderService struct {
	DB     *gorm.DB
	Mailer mailer.Dispatcher
}

func NewReminderService(db *gorm.DB, dispatcher mailer.Dispatcher) *ReminderService {
	return &ReminderService{DB: db, Mailer: dispatcher}
}

// Create заводит напоминание для layby. На один layby допускается не
// более одного напоминания.
func (s *ReminderService) Create(laybyID uint, frequency string, nextDate time.Time) (*models.Reminder, error) {
	if _, ok := reminderPeriodDays[frequency]; !ok {
		return nil, validationError("frequency", "Недопустимая частота напоминаний")
	}

	var count int64
	if err := s.DB.Model(&models.Reminder{}).
		Where("layby_id = ?", laybyID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationError("laybyId", "У этого layby уже есть напоминание")
	}

	reminder := models.Reminder{
		LaybyID:          laybyID,
		Frequency:        frequency,
		NextReminderDate: models.DateOnly(nextDate),
		IsActive:         true,
	}
	if err := s.DB.Create(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Get возвращает напоминание по ID.
func (s *ReminderService) Get(id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.DB.First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListForUser возвращает напоминания по всем layby пользователя.
func (s *ReminderService) ListForUser(userID uint) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.DB.Joins("JOIN laybies ON laybies.id = reminders.layby_id").
		Where("laybies.user_id = ?", userID).Find(&reminders).Error
	return reminders, err
}

// DueReminders возвращает активные напоминания, назначенные РОВНО на дату
// asOf. Именно равенство, не <=: напоминание, чей день был пропущен
// (например, обход не запускался), молча пропускается до следующего
// периода. Вариант с "<=" (доставлять все накопившееся) сознательно не
// включен.
func (s *ReminderService) DueReminders(asOf time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.DB.Where("next_reminder_date = ? AND is_active = ?",
		models.DateOnly(asOf), true).Find(&reminders).Error
	return reminders, err
}

// Advance сдвигает дату следующего напоминания ровно на один период
// вперед. Дата после вызова всегда строго больше прежней.
func (s *ReminderService) Advance(reminder *models.Reminder) error {
	days, ok := reminderPeriodDays[reminder.Frequency]
	if !ok {
		return validationError("frequency", "Недопустимая частота напоминаний")
	}
	next := reminder.NextReminderDate.AddDate(0, 0, days)
	if err := s.DB.Model(reminder).Update("next_reminder_date", next).Error; err != nil {
		return err
	}
	reminder.NextReminderDate = next
	return nil
}

// ProcessDue обрабатывает все напоминания, назначенные на дату asOf:
// для каждого создается запись Notification, отправляется письмо и
// расписание сдвигается на период вперед. Сдвиг происходит БЕЗУСЛОВНО,
// даже если доставка не удалась: повторной попытки на ту же дату нет,
// следующая возможность - через полный период. Ошибки транспорта
// никогда не поднимаются к вызывающему.
func (s *ReminderService) ProcessDue(asOf time.Time) error {
	due, err := s.DueReminders(asOf)
	if err != nil {
		return err
	}

	for i := range due {
		reminder := &due[i]
		s.sendNotification(reminder)
		if err := s.Advance(reminder); err != nil {
			return err
		}
	}
	return nil
}

// sendNotification выполняет одну попытку доставки: запись журнала
// создается до отправки, флаг is_sent выставляется после подтверждения.
func (s *ReminderService) sendNotification(reminder *models.Reminder) {
	notification := models.Notification{
		ReminderID: reminder.ID,
		MessageID:  uuid.NewString(),
		SentAt:     time.Now(),
		IsSent:     false,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		slog.Error("Не удалось создать запись уведомления", "reminder_id", reminder.ID, "error", err)
		return
	}

	var layby models.Layby
	if err := s.DB.Preload("User").First(&layby, reminder.LaybyID).Error; err != nil {
		slog.Error("Не удалось загрузить layby для напоминания", "reminder_id", reminder.ID, "error", err)
		return
	}

	if s.Mailer == nil {
		slog.Warn("Dispatcher не настроен, напоминание не отправлено", "reminder_id", reminder.ID)
		return
	}
	if err := s.Mailer.SendLaybyReminder(&layby.User, &layby); err != nil {
		slog.Error("Ошибка отправки напоминания", "reminder_id", reminder.ID,
			"message_id", notification.MessageID, "error", err)
		return
	}

	if err := s.DB.Model(&notification).Update("is_sent", true).Error; err != nil {
		slog.Error("Не удалось отметить уведомление отправленным",
			"notification_id", notification.ID, "error", err)
	}
}

// ToggleActive переключает активность напоминания и возвращает новое
// состояние.
func (s *ReminderService) ToggleActive(reminder *models.Reminder) (bool, error) {
	newState := !reminder.IsActive
	if err := s.DB.Model(reminder).Update("is_active", newState).Error; err != nil {
		return reminder.IsActive, err
	}
	reminder.IsActive = newState
	return newState, nil
}

// Reset переназначает расписание на указанную дату.
func (s *ReminderService) Reset(reminder *models.Reminder, toDate time.Time) error {
	next := models.DateOnly(toDate)
	if err := s.DB.Model(reminder).Update("next_reminder_date", next).Error; err != nil {
		return err
	}
	reminder.NextReminderDate = next
	return nil
}

// Upcoming возвращает активные напоминания пользователя на ближайшие
// days дней.
func (s *ReminderService) Upcoming(userID uint, days int) ([]models.Reminder, error) {
	endDate := models.DateOnly(time.Now()).AddDate(0, 0, days)
	var reminders []models.Reminder
	err := s.DB.Joins("JOIN laybies ON laybies.id = reminders.layby_id").
		Where("laybies.user_id = ? AND reminders.next_reminder_date <= ? AND reminders.is_active = ?",
			userID, endDate, true).
		Order("reminders.next_reminder_date ASC").Find(&reminders).Error
	return reminders, err
}

// NotificationHistory - журнал попыток доставки одного напоминания,
// новые первыми.
func (s *ReminderService) NotificationHistory(reminderID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("reminder_id = ?", reminderID).
		Order("sent_at DESC").Find(&notifications).Error
	return notifications, err
}

// RecentNotifications - уведомления по всем напоминаниям пользователя
// за последние days дней.
func (s *ReminderService) RecentNotifications(userID uint, days int) ([]models.Notification, error) {
	since := time.Now().AddDate(0, 0, -days)
	var notifications []models.Notification
	err := s.DB.Joins("JOIN reminders ON reminders.id = notifications.reminder_id").
		Joins("JOIN laybies ON laybies.id = reminders.layby_id").
		Where("laybies.user_id = ? AND notifications.sent_at >= ?", userID, since).
		Order("notifications.sent_at DESC").Find(&notifications).Error
	return notifications, err
}
