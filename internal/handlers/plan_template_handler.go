// pay-by-plan/internal/handlers/plan_template_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// PlanTemplateHandler обслуживает CRUD шаблонов графиков взносов.
type PlanTemplateHandler struct {
	Plans *services.PlanService
}

func NewPlanTemplateHandler(plans *services.PlanService) *PlanTemplateHandler {
	return &PlanTemplateHandler{Plans: plans}
}

// CreatePlanTemplateRequest определяет структуру для входящих данных.
type CreatePlanTemplateRequest struct {
	Name         string                   `json:"name" binding:"required"`
	Description  string                   `json:"description"`
	Installments []PlanInstallmentRequest `json:"installments" binding:"required"`
}

type PlanInstallmentRequest struct {
	Label   string `json:"label" binding:"required"`
	Formula string `json:"formula" binding:"required"`
	Ordinal int    `json:"ordinal"`
}

// List возвращает все шаблоны.
func (h *PlanTemplateHandler) List(c *gin.Context) {
	templates, err := h.Plans.ListTemplates()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

// Create сохраняет новый шаблон.
func (h *PlanTemplateHandler) Create(c *gin.Context) {
	var req CreatePlanTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	template := models.PlanTemplate{
		Name:        req.Name,
		Description: req.Description,
	}
	for _, installment := range req.Installments {
		template.Installments = append(template.Installments, models.PlanInstallment{
			Label:   installment.Label,
			Formula: installment.Formula,
			Ordinal: installment.Ordinal,
		})
	}

	if err := h.Plans.CreateTemplate(&template); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// Get возвращает шаблон со строками.
func (h *PlanTemplateHandler) Get(c *gin.Context) {
	template, ok := h.templateFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, template)
}

// Delete удаляет шаблон.
func (h *PlanTemplateHandler) Delete(c *gin.Context) {
	template, ok := h.templateFromPath(c)
	if !ok {
		return
	}
	if err := h.Plans.DeleteTemplate(template); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlanTemplateHandler) templateFromPath(c *gin.Context) (*models.PlanTemplate, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID шаблона"})
		return nil, false
	}
	template, err := h.Plans.GetTemplate(uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return template, true
}
