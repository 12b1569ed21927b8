// pay-by-plan/internal/services/plan_service.go
package services

import (
	"fmt"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// paymentPeriodDays - шаг между взносами по частоте платежей layby.
// Как и у напоминаний, месяц - это фиксированные 30 дней.
var paymentPeriodDays = map[string]int{
	models.FrequencyBiweekly: 14,
	models.FrequencyMonthly:  30,
}

// PlanService генерирует предлагаемый график взносов по именованным
// шаблонам. Строки шаблона - формулы над стоимостью layby, например
// "total * 0.25" для депозита в четверть стоимости. График носит
// рекомендательный характер и нигде не становится обязательством,
// поэтому вычисление формул через float с округлением до 2 знаков
// здесь допустимо.
type PlanService struct {
	DB *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{DB: db}
}

// SuggestedInstallment - одна строка сгенерированного графика.
type SuggestedInstallment struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"dueDate"`
}

// Generate вычисляет график по шаблону для конкретного layby. Даты
// расставляются от даты начала с шагом в один платежный период.
// Формулам доступны параметры "total" (полная стоимость) и "remaining"
// (что осталось распределить после предыдущих строк).
func (s *PlanService) Generate(layby *models.Layby, templateID uint) ([]SuggestedInstallment, error) {
	var template models.PlanTemplate
	if err := s.DB.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).First(&template, templateID).Error; err != nil {
		return nil, err
	}

	step, ok := paymentPeriodDays[layby.PaymentFrequency]
	if !ok {
		return nil, validationError("paymentFrequency", "Недопустимая частота платежей")
	}

	total := layby.TotalCost
	remaining := total
	schedule := make([]SuggestedInstallment, 0, len(template.Installments))

	for i, installment := range template.Installments {
		expression, err := govaluate.NewEvaluableExpression(installment.Formula)
		if err != nil {
			return nil, validationError("formula",
				fmt.Sprintf("Ошибка в формуле '%s': %v", installment.Formula, err))
		}

		parameters := map[string]interface{}{
			"total":     total.InexactFloat64(),
			"remaining": remaining.InexactFloat64(),
		}
		result, err := expression.Evaluate(parameters)
		if err != nil {
			return nil, validationError("formula",
				fmt.Sprintf("Не удалось вычислить формулу '%s': %v", installment.Formula, err))
		}
		value, ok := result.(float64)
		if !ok {
			return nil, validationError("formula", "Результат формулы не является числом")
		}

		amount := decimal.NewFromFloat(value).Round(2)
		remaining = remaining.Sub(amount)

		schedule = append(schedule, SuggestedInstallment{
			Label:   installment.Label,
			Amount:  amount,
			DueDate: layby.StartDate.AddDate(0, 0, i*step),
		})
	}

	return schedule, nil
}

// CreateTemplate сохраняет шаблон вместе со строками.
func (s *PlanService) CreateTemplate(template *models.PlanTemplate) error {
	if template.Name == "" {
		return validationError("name", "Название шаблона обязательно")
	}
	if len(template.Installments) == 0 {
		return validationError("installments", "Шаблон должен содержать хотя бы одну строку")
	}
	return s.DB.Create(template).Error
}

// GetTemplate возвращает шаблон со строками.
func (s *PlanService) GetTemplate(id uint) (*models.PlanTemplate, error) {
	var template models.PlanTemplate
	if err := s.DB.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ListTemplates возвращает все шаблоны со строками.
func (s *PlanService) ListTemplates() ([]models.PlanTemplate, error) {
	var templates []models.PlanTemplate
	err := s.DB.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).Order("name ASC").Find(&templates).Error
	return templates, err
}

// DeleteTemplate удаляет шаблон вместе со строками.
func (s *PlanService) DeleteTemplate(template *models.PlanTemplate) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("plan_template_id = ?", template.ID).
			Delete(&models.PlanInstallment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(template).Error
	})
}
