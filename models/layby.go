// pay-by-plan/models/layby.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Частоты платежей по layby.
const (
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// Layby представляет покупку "в рассрочку": магазин придерживает товар,
// покупатель гасит стоимость частями до полной оплаты.
type Layby struct {
	gorm.Model
	UserID uint `json:"userId" gorm:"not null;index"`
	User   User `json:"-"`

	ShopName        string `json:"shopName" gorm:"size:100;not null;index"`
	ItemDescription string `json:"itemDescription" gorm:"not null"`

	// TotalCost - полная стоимость товара. numeric(10,2) в БД, decimal в Go:
	// денежная арифметика здесь всегда точная, float не используется.
	TotalCost decimal.Decimal `json:"totalCost" gorm:"type:numeric(10,2);not null"`

	PaymentFrequency string    `json:"paymentFrequency" gorm:"size:10;not null;default:'monthly'"`
	StartDate        time.Time `json:"startDate" gorm:"type:date;not null"`
	ExpectedEndDate  time.Time `json:"expectedEndDate" gorm:"type:date;not null"`

	// IsActive - ручной переключатель, НЕ зависит от завершенности.
	IsActive bool `json:"isActive" gorm:"not null;default:true"`
	// IsComplete выставляется в true единственным легальным путем -
	// приемом платежа, который обнуляет остаток (services.PaymentService).
	IsComplete bool `json:"isComplete" gorm:"not null;default:false"`

	Payments []Payment `json:"-" gorm:"foreignKey:LaybyID;constraint:OnDelete:CASCADE"`
	Reminder *Reminder `json:"-" gorm:"foreignKey:LaybyID;constraint:OnDelete:CASCADE"`
}

// IsOverdue сообщает, просрочен ли layby на дату today:
// активен, не завершен и ожидаемая дата окончания уже прошла.
func (l *Layby) IsOverdue(today time.Time) bool {
	return l.IsActive && !l.IsComplete && l.ExpectedEndDate.Before(DateOnly(today))
}

// DateOnly обрезает время до полуночи UTC. Все "чистые" даты (start_date,
// expected_end_date, next_reminder_date) храним нормализованными, иначе
// сравнение на равенство в запросах не работает.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
