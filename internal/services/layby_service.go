// pay-by-plan/internal/services/layby_service.go
package services

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/internal/mailer"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// LaybyService отвечает за жизненный цикл layby: создание, изменение,
// удаление и производные величины (остаток, прогресс, просрочка).
// Зависимости передаются через конструктор, глобальных синглтонов здесь нет.
type LaybyService struct {
	DB     *gorm.DB
	Mailer mailer.Dispatcher
}

func NewLaybyService(db *gorm.DB, dispatcher mailer.Dispatcher) *LaybyService {
	return &LaybyService{DB: db, Mailer: dispatcher}
}

// CreateLaybyInput - входные данные для создания layby.
type CreateLaybyInput struct {
	ShopName         string
	ItemDescription  string
	TotalCost        decimal.Decimal
	PaymentFrequency string
	StartDate        time.Time // нулевое значение = сегодня
	ExpectedEndDate  time.Time
}

// UpdateLaybyInput - частичное обновление: применяются только ненулевые
// указатели. Полная стоимость после создания не меняется.
type UpdateLaybyInput struct {
	ShopName         *string
	ItemDescription  *string
	PaymentFrequency *string
	StartDate        *time.Time
	ExpectedEndDate  *time.Time
}

// LaybyFilter - фильтры списка layby (как в строке запроса API).
type LaybyFilter struct {
	StartDateFrom *time.Time // start_date >=
	EndDateTo     *time.Time // expected_end_date <=
	IsActive      *bool
	IsComplete    *bool
}

// Create проверяет инварианты, сохраняет новый layby и отправляет письмо
// с подтверждением. Неудача отправки логируется и НЕ откатывает создание.
func (s *LaybyService) Create(user *models.User, in CreateLaybyInput) (*models.Layby, error) {
	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	start = models.DateOnly(start)
	end := models.DateOnly(in.ExpectedEndDate)

	if in.TotalCost.LessThanOrEqual(decimal.Zero) {
		return nil, validationError("totalCost", "Полная стоимость должна быть положительной")
	}
	if err := validateFrequency(in.PaymentFrequency); err != nil {
		return nil, err
	}
	// Строго после: равные даты тоже отклоняются.
	if !end.After(start) {
		return nil, validationError("expectedEndDate", "Ожидаемая дата окончания должна быть позже даты начала")
	}

	layby := models.Layby{
		UserID:           user.ID,
		ShopName:         in.ShopName,
		ItemDescription:  in.ItemDescription,
		TotalCost:        in.TotalCost,
		PaymentFrequency: in.PaymentFrequency,
		StartDate:        start,
		ExpectedEndDate:  end,
		IsActive:         true,
		IsComplete:       false,
	}
	if err := s.DB.Create(&layby).Error; err != nil {
		return nil, err
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendLaybyConfirmation(user, &layby); err != nil {
			slog.Error("Не удалось отправить подтверждение layby", "layby_id", layby.ID, "error", err)
		}
	}

	return &layby, nil
}

// Update применяет только переданные поля. Инвариант дат перепроверяется
// по значениям ПОСЛЕ обновления; при ошибке не меняется ни запись в базе,
// ни переданная структура - поля собираются на копии и переносятся в
// layby только после успешной записи.
func (s *LaybyService) Update(layby *models.Layby, in UpdateLaybyInput) error {
	updated := *layby
	if in.StartDate != nil {
		updated.StartDate = models.DateOnly(*in.StartDate)
	}
	if in.ExpectedEndDate != nil {
		updated.ExpectedEndDate = models.DateOnly(*in.ExpectedEndDate)
	}
	if !updated.ExpectedEndDate.After(updated.StartDate) {
		return validationError("expectedEndDate", "Ожидаемая дата окончания должна быть позже даты начала")
	}
	if in.PaymentFrequency != nil {
		if err := validateFrequency(*in.PaymentFrequency); err != nil {
			return err
		}
		updated.PaymentFrequency = *in.PaymentFrequency
	}
	if in.ShopName != nil {
		updated.ShopName = *in.ShopName
	}
	if in.ItemDescription != nil {
		updated.ItemDescription = *in.ItemDescription
	}

	if err := s.DB.Save(&updated).Error; err != nil {
		return err
	}
	*layby = updated
	return nil
}

// Get возвращает layby по ID.
func (s *LaybyService) Get(id uint) (*models.Layby, error) {
	var layby models.Layby
	if err := s.DB.First(&layby, id).Error; err != nil {
		return nil, err
	}
	return &layby, nil
}

// Scope превращает фильтр в GORM-scope по layby пользователя userID.
// Один и тот же scope используется и для выборки, и для подсчета строк
// при пагинации.
func (f LaybyFilter) Scope(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if f.StartDateFrom != nil {
			db = db.Where("start_date >= ?", models.DateOnly(*f.StartDateFrom))
		}
		if f.EndDateTo != nil {
			db = db.Where("expected_end_date <= ?", models.DateOnly(*f.EndDateTo))
		}
		if f.IsActive != nil {
			db = db.Where("is_active = ?", *f.IsActive)
		}
		if f.IsComplete != nil {
			db = db.Where("is_complete = ?", *f.IsComplete)
		}
		return db
	}
}

// ListForUser возвращает layby пользователя с опциональными фильтрами,
// новые договоренности первыми.
func (s *LaybyService) ListForUser(userID uint, filter LaybyFilter) ([]models.Layby, error) {
	var laybys []models.Layby
	err := s.DB.Scopes(filter.Scope(userID)).
		Order("start_date DESC").Find(&laybys).Error
	return laybys, err
}

// ActiveLaybys возвращает все активные и еще не завершенные layby.
func (s *LaybyService) ActiveLaybys() ([]models.Layby, error) {
	var laybys []models.Layby
	err := s.DB.Where("is_active = ? AND is_complete = ?", true, false).
		Order("start_date DESC").Find(&laybys).Error
	return laybys, err
}

// OverdueLaybys возвращает просроченные layby пользователя на дату today.
func (s *LaybyService) OverdueLaybys(userID uint, today time.Time) ([]models.Layby, error) {
	var laybys []models.Layby
	err := s.DB.Where(
		"user_id = ? AND is_active = ? AND is_complete = ? AND expected_end_date < ?",
		userID, true, false, models.DateOnly(today),
	).Order("expected_end_date ASC").Find(&laybys).Error
	return laybys, err
}

// RemainingBalance - остаток к оплате: полная стоимость минус сумма всех
// платежей. Всегда пересчитывается из текущего набора платежей, никогда
// не кэшируется: корректировки и удаления платежей должны влиять на
// остаток задним числом.
func (s *LaybyService) RemainingBalance(layby *models.Layby) (decimal.Decimal, error) {
	paid, err := sumPayments(s.DB, layby.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return layby.TotalCost.Sub(paid), nil
}

// PaymentProgress - процент оплаченного, округленный до целого и
// зажатый в [0, 100].
func (s *LaybyService) PaymentProgress(layby *models.Layby) (int, error) {
	paid, err := sumPayments(s.DB, layby.ID)
	if err != nil {
		return 0, err
	}
	if layby.TotalCost.LessThanOrEqual(decimal.Zero) {
		return 0, nil
	}
	pct := int(paid.Mul(decimal.NewFromInt(100)).Div(layby.TotalCost).Round(0).IntPart())
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// SetComplete - административная установка флага завершенности.
// Баланс здесь НЕ проверяется: это грубый ручной override, законный путь
// к завершению - прием платежа, обнуляющий остаток (PaymentService.Accept).
func (s *LaybyService) SetComplete(layby *models.Layby, complete bool) error {
	if err := s.DB.Model(layby).Update("is_complete", complete).Error; err != nil {
		return err
	}
	layby.IsComplete = complete
	return nil
}

// SetActive - административная установка флага активности. Флаг ортогонален
// завершенности: неактивный layby не принимает платежи, но не считается
// завершенным.
func (s *LaybyService) SetActive(layby *models.Layby, active bool) error {
	if err := s.DB.Model(layby).Update("is_active", active).Error; err != nil {
		return err
	}
	layby.IsActive = active
	return nil
}

// Delete безвозвратно удаляет layby вместе с платежами, напоминанием и
// историей уведомлений. Для денежных сущностей обычный soft delete не
// используется: раз пользователь удаляет договоренность, следы платежей
// по ней тоже уходят.
func (s *LaybyService) Delete(layby *models.Layby) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var reminder models.Reminder
		err := tx.Where("layby_id = ?", layby.ID).First(&reminder).Error
		switch {
		case err == nil:
			if err := tx.Unscoped().Where("reminder_id = ?", reminder.ID).
				Delete(&models.Notification{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&reminder).Error; err != nil {
				return err
			}
		case err != gorm.ErrRecordNotFound:
			return err
		}

		if err := tx.Unscoped().Where("layby_id = ?", layby.ID).
			Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(layby).Error
	})
}

func validateFrequency(frequency string) error {
	switch frequency {
	case models.FrequencyBiweekly, models.FrequencyMonthly:
		return nil
	}
	return validationError("paymentFrequency", "Недопустимая частота платежей")
}
