// pay-by-plan/models/payment.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment представляет один взнос по layby. Создается только через
// PaymentService.Accept - это единственная точка, где проверяются
// инварианты баланса.
type Payment struct {
	gorm.Model
	LaybyID uint  `json:"laybyId" gorm:"not null;index"`
	Layby   Layby `json:"-"`

	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`

	// PaymentDate фиксируется при создании и дальше не меняется.
	PaymentDate time.Time `json:"paymentDate" gorm:"not null"`
}
