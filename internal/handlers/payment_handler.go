// pay-by-plan/internal/handlers/payment_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// PaymentHandler обслуживает прием и корректировку платежей.
type PaymentHandler struct {
	DB       *gorm.DB
	Payments *services.PaymentService
	Laybys   *services.LaybyService
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService, laybys *services.LaybyService) *PaymentHandler {
	return &PaymentHandler{DB: db, Payments: payments, Laybys: laybys}
}

// CreatePaymentRequest определяет структуру для входящих данных.
type CreatePaymentRequest struct {
	LaybyID uint            `json:"laybyId" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

type UpdatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// List возвращает все платежи текущего пользователя.
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.Payments.ListForUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

// Create принимает платеж по layby.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	if _, ok := h.ownedLayby(c, req.LaybyID); !ok {
		return
	}

	payment, err := h.Payments.Accept(req.LaybyID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// Get возвращает один платеж.
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, ok := h.ownedPayment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Update - административная корректировка суммы.
func (h *PaymentHandler) Update(c *gin.Context) {
	payment, ok := h.ownedPayment(c)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	updated, err := h.Payments.Update(payment.ID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete удаляет платеж (административная корректировка).
func (h *PaymentHandler) Delete(c *gin.Context) {
	payment, ok := h.ownedPayment(c)
	if !ok {
		return
	}
	if err := h.Payments.Delete(payment); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LaybyPayments возвращает платежи одного layby.
func (h *PaymentHandler) LaybyPayments(c *gin.Context) {
	laybyID, ok := h.laybyIDFromQuery(c)
	if !ok {
		return
	}
	payments, err := h.Payments.ListForLayby(laybyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

// Summary возвращает сводку стоимость/оплачено/остаток по layby.
func (h *PaymentHandler) Summary(c *gin.Context) {
	laybyID, ok := h.laybyIDFromQuery(c)
	if !ok {
		return
	}
	layby, ok := h.ownedLayby(c, laybyID)
	if !ok {
		return
	}
	summary, err := h.Payments.Summary(layby)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recent возвращает платежи за последние N дней (по умолчанию 30).
func (h *PaymentHandler) Recent(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверное значение days"})
			return
		}
		days = parsed
	}

	payments, err := h.Payments.Recent(currentUserID(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (h *PaymentHandler) laybyIDFromQuery(c *gin.Context) (uint, bool) {
	laybyID, err := strconv.ParseUint(c.Query("layby_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID layby"})
		return 0, false
	}
	return uint(laybyID), true
}

func (h *PaymentHandler) ownedLayby(c *gin.Context, laybyID uint) (*models.Layby, bool) {
	layby, err := h.Laybys.Get(laybyID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if layby.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
		return nil, false
	}
	return layby, true
}

func (h *PaymentHandler) ownedPayment(c *gin.Context) (*models.Payment, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID платежа"})
		return nil, false
	}

	payment, err := h.Payments.Get(uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if _, ok := h.ownedLayby(c, payment.LaybyID); !ok {
		return nil, false
	}
	return payment, true
}
