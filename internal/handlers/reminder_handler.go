// pay-by-plan/internal/handlers/reminder_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mavhungutrezzy/pay-by-plan/internal/scheduler"
	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// ReminderHandler обслуживает напоминания и журнал уведомлений.
type ReminderHandler struct {
	Reminders *services.ReminderService
	Laybys    *services.LaybyService
	Scheduler *scheduler.Scheduler
}

func NewReminderHandler(reminders *services.ReminderService, laybys *services.LaybyService, sched *scheduler.Scheduler) *ReminderHandler {
	return &ReminderHandler{Reminders: reminders, Laybys: laybys, Scheduler: sched}
}

// CreateReminderRequest определяет структуру для входящих данных.
type CreateReminderRequest struct {
	LaybyID          uint   `json:"laybyId" binding:"required"`
	Frequency        string `json:"frequency" binding:"required"`
	NextReminderDate string `json:"nextReminderDate" binding:"required"`
}

// List возвращает напоминания пользователя.
func (h *ReminderHandler) List(c *gin.Context) {
	reminders, err := h.Reminders.ListForUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders})
}

// Create заводит напоминание для layby пользователя.
func (h *ReminderHandler) Create(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}
	nextDate, err := parseDate(req.NextReminderDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
		return
	}

	// Напоминание можно повесить только на свой layby.
	layby, err := h.Laybys.Get(req.LaybyID)
	if err != nil {
		respondError(c, err)
		return
	}
	if layby.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
		return
	}

	reminder, err := h.Reminders.Create(req.LaybyID, req.Frequency, nextDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// Get возвращает одно напоминание.
func (h *ReminderHandler) Get(c *gin.Context) {
	reminder, ok := h.ownedReminder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// Delete удаляет напоминание.
func (h *ReminderHandler) Delete(c *gin.Context) {
	reminder, ok := h.ownedReminder(c)
	if !ok {
		return
	}
	if err := h.Reminders.DB.Unscoped().Delete(reminder).Error; err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleActive переключает активность напоминания.
func (h *ReminderHandler) ToggleActive(c *gin.Context) {
	reminder, ok := h.ownedReminder(c)
	if !ok {
		return
	}
	isActive, err := h.Reminders.ToggleActive(reminder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "isActive": isActive})
}

// NotificationHistory возвращает журнал попыток доставки напоминания.
func (h *ReminderHandler) NotificationHistory(c *gin.Context) {
	reminder, ok := h.ownedReminder(c)
	if !ok {
		return
	}
	notifications, err := h.Reminders.NotificationHistory(reminder.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// Upcoming возвращает напоминания на ближайшие 7 дней.
func (h *ReminderHandler) Upcoming(c *gin.Context) {
	reminders, err := h.Reminders.Upcoming(currentUserID(c), 7)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reminders})
}

// ProcessDue - ручной запуск обхода напоминаний. Обход выполняется
// асинхронно планировщиком; ответ лишь подтверждает постановку в очередь.
func (h *ReminderHandler) ProcessDue(c *gin.Context) {
	h.Scheduler.Notify()
	c.JSON(http.StatusAccepted, gin.H{"status": "Обход напоминаний запланирован"})
}

// ResetSchedule переназначает расписание с сегодняшнего дня или с
// даты из тела запроса.
func (h *ReminderHandler) ResetSchedule(c *gin.Context) {
	reminder, ok := h.ownedReminder(c)
	if !ok {
		return
	}

	var body struct {
		ToDate string `json:"toDate"`
	}
	// Пустое тело означает "с сегодняшнего дня", битый JSON - ошибка клиента.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	toDate := models.DateOnly(time.Now())
	if body.ToDate != "" {
		parsed, err := parseDate(body.ToDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
			return
		}
		toDate = parsed
	}

	if err := h.Reminders.Reset(reminder, toDate); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nextReminderDate": reminder.NextReminderDate})
}

func (h *ReminderHandler) ownedReminder(c *gin.Context) (*models.Reminder, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID напоминания"})
		return nil, false
	}

	reminder, err := h.Reminders.Get(uint(id))
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	layby, err := h.Laybys.Get(reminder.LaybyID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if layby.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
		return nil, false
	}
	return reminder, true
}
