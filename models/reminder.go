// pay-by-plan/models/reminder.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Частоты напоминаний. Период "monthly" - это фиксированные 30 дней,
// не календарный месяц (см. ReminderService.Advance).
const (
	ReminderDaily    = "daily"
	ReminderWeekly   = "weekly"
	ReminderBiweekly = "biweekly"
	ReminderMonthly  = "monthly"
)

// Reminder - расписание повторяющихся уведомлений для одного layby.
// На один layby может существовать не более одного напоминания.
type Reminder struct {
	gorm.Model
	LaybyID uint  `json:"laybyId" gorm:"uniqueIndex;not null"`
	Layby   Layby `json:"-"`

	Frequency        string    `json:"frequency" gorm:"size:10;not null"`
	NextReminderDate time.Time `json:"nextReminderDate" gorm:"type:date;not null"`
	IsActive         bool      `json:"isActive" gorm:"not null;default:true"`

	Notifications []Notification `json:"-" gorm:"foreignKey:ReminderID;constraint:OnDelete:CASCADE"`
}

// Notification - запись об одной попытке доставки уведомления.
// Создается в начале попытки; после подтверждения доставки один раз
// обновляется флаг IsSent. Больше записи не мутируются.
type Notification struct {
	gorm.Model
	ReminderID uint     `json:"reminderId" gorm:"not null;index"`
	Reminder   Reminder `json:"-"`

	MessageID string    `json:"messageId" gorm:"size:36"` // uuid попытки доставки
	SentAt    time.Time `json:"sentAt" gorm:"not null"`
	IsSent    bool      `json:"isSent" gorm:"not null;default:false"`
}
