// pay-by-plan/models/plan_template.go
package models

import "gorm.io/gorm"

// PlanTemplate - именованный шаблон графика взносов. По шаблону для
// конкретного layby генерируется предлагаемый план платежей.
type PlanTemplate struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`

	Installments []PlanInstallment `json:"installments" gorm:"foreignKey:PlanTemplateID;constraint:OnDelete:CASCADE"`
}

// PlanInstallment - одна строка шаблона. Formula - выражение над параметром
// "total" (например "total * 0.25" для депозита в четверть стоимости),
// вычисляется через govaluate при генерации плана.
type PlanInstallment struct {
	gorm.Model
	PlanTemplateID uint `json:"planTemplateId" gorm:"not null;index"`

	Label   string `json:"label" gorm:"not null"` // Например, "Депозит" или "Взнос 2"
	Formula string `json:"formula" gorm:"not null"`
	// Ordinal задает порядок строк в графике.
	Ordinal int `json:"ordinal" gorm:"not null;default:0"`
}
