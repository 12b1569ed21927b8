// pay-by-plan/internal/services/payment_service.go
package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// PaymentService - единственный путь, которым деньги попадают в layby.
// Все инварианты баланса проверяются здесь, внутри одной транзакции.
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{DB: db}
}

// PaymentSummary - сводка по платежам одного layby.
type PaymentSummary struct {
	LaybyID          uint            `json:"laybyId"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// Accept принимает платеж по layby. Вся последовательность
// чтение-проверка-запись выполняется в одной транзакции с блокировкой
// строки layby, чтобы два конкурентных платежа не проскочили проверку
// остатка одновременно.
//
// Порядок проверок фиксирован: сумма > 0, layby не завершен, layby
// активен, сумма не превышает остаток. Превышение остатка даже на копейку
// отклоняется - сравнение ведется в точной десятичной арифметике.
// Если после платежа остаток становится ровно нулем, здесь же
// выставляется is_complete. Это единственный легальный путь завершения.
func (s *PaymentService) Accept(laybyID uint, amount decimal.Decimal) (*models.Payment, error) {
	var payment models.Payment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		q := tx
		// SELECT ... FOR UPDATE поддерживается только в Postgres;
		// SQLite (тесты) и так сериализует запись на уровне файла.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var layby models.Layby
		if err := q.First(&layby, laybyID).Error; err != nil {
			return err
		}

		if amount.LessThanOrEqual(decimal.Zero) {
			return validationError("amount", "Сумма платежа должна быть положительной")
		}
		if layby.IsComplete {
			return validationError("", "Layby уже полностью оплачен, платежи не принимаются")
		}
		if !layby.IsActive {
			return validationError("", "Layby неактивен, платежи не принимаются")
		}

		paid, err := sumPayments(tx, layby.ID)
		if err != nil {
			return err
		}
		remaining := layby.TotalCost.Sub(paid)
		if amount.GreaterThan(remaining) {
			return validationError("amount", "Сумма платежа превышает остаток по layby")
		}

		payment = models.Payment{
			LaybyID:     layby.ID,
			Amount:      amount,
			PaymentDate: time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if remaining.Equal(amount) {
			if err := tx.Model(&layby).Update("is_complete", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update - административная корректировка суммы платежа. Новая сумма
// проверяется против текущего остатка БЕЗ самого корректируемого платежа.
// Флаг is_complete при этом не снимается, даже если корректировка заново
// открывает остаток: возврат в работу - отдельное явное действие
// (LaybyService.SetComplete).
func (s *PaymentService) Update(paymentID uint, newAmount decimal.Decimal) (*models.Payment, error) {
	var payment models.Payment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var layby models.Layby
		if err := q.First(&layby, payment.LaybyID).Error; err != nil {
			return err
		}

		if newAmount.LessThanOrEqual(decimal.Zero) {
			return validationError("amount", "Сумма платежа должна быть положительной")
		}
		paidExcluding, err := sumPaymentsExcluding(tx, layby.ID, payment.ID)
		if err != nil {
			return err
		}
		if newAmount.GreaterThan(layby.TotalCost.Sub(paidExcluding)) {
			return validationError("amount", "Сумма платежа превышает остаток по layby")
		}

		payment.Amount = newAmount
		return tx.Model(&payment).Update("amount", newAmount).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Delete удаляет платеж. Остаток пересчитается при следующем чтении;
// завершенность layby автоматически не откатывается.
func (s *PaymentService) Delete(payment *models.Payment) error {
	return s.DB.Delete(payment).Error
}

// Get возвращает платеж по ID.
func (s *PaymentService) Get(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForLayby возвращает платежи одного layby, новые первыми.
func (s *PaymentService) ListForLayby(laybyID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Where("layby_id = ?", laybyID).
		Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

// ListForUser возвращает все платежи пользователя по всем его layby.
func (s *PaymentService) ListForUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Joins("JOIN laybies ON laybies.id = payments.layby_id").
		Where("laybies.user_id = ?", userID).
		Order("payments.payment_date DESC").Find(&payments).Error
	return payments, err
}

// Recent возвращает платежи пользователя за последние days дней.
func (s *PaymentService) Recent(userID uint, days int) ([]models.Payment, error) {
	since := models.DateOnly(time.Now()).AddDate(0, 0, -days)
	var payments []models.Payment
	err := s.DB.Joins("JOIN laybies ON laybies.id = payments.layby_id").
		Where("laybies.user_id = ? AND payments.payment_date >= ?", userID, since).
		Order("payments.payment_date DESC").Find(&payments).Error
	return payments, err
}

// TotalPaid - сумма всех платежей по layby.
func (s *PaymentService) TotalPaid(laybyID uint) (decimal.Decimal, error) {
	return sumPayments(s.DB, laybyID)
}

// Summary собирает сводку стоимость/оплачено/остаток.
func (s *PaymentService) Summary(layby *models.Layby) (*PaymentSummary, error) {
	paid, err := sumPayments(s.DB, layby.ID)
	if err != nil {
		return nil, err
	}
	return &PaymentSummary{
		LaybyID:          layby.ID,
		TotalCost:        layby.TotalCost,
		TotalPaid:        paid,
		RemainingBalance: layby.TotalCost.Sub(paid),
	}, nil
}

// sumPayments складывает суммы платежей в Go, а не через SUM() в SQL:
// десятичная арифметика остается точной независимо от того, как драйвер
// хранит numeric-колонки.
func sumPayments(db *gorm.DB, laybyID uint) (decimal.Decimal, error) {
	var payments []models.Payment
	if err := db.Where("layby_id = ?", laybyID).Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

func sumPaymentsExcluding(db *gorm.DB, laybyID, paymentID uint) (decimal.Decimal, error) {
	var payments []models.Payment
	if err := db.Where("layby_id = ? AND id <> ?", laybyID, paymentID).
		Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}
