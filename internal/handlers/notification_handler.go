// pay-by-plan/internal/handlers/notification_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// NotificationHandler - только чтение: записи о доставках не создаются и
// не правятся через API.
type NotificationHandler struct {
	Reminders *services.ReminderService
}

func NewNotificationHandler(reminders *services.ReminderService) *NotificationHandler {
	return &NotificationHandler{Reminders: reminders}
}

// List возвращает уведомления пользователя за последние 90 дней.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.Reminders.RecentNotifications(currentUserID(c), 90)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// Recent возвращает уведомления за последние 30 дней.
func (h *NotificationHandler) Recent(c *gin.Context) {
	notifications, err := h.Reminders.RecentNotifications(currentUserID(c), 30)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// Get возвращает одну запись журнала.
func (h *NotificationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID уведомления"})
		return
	}

	var notification models.Notification
	if err := h.Reminders.DB.First(&notification, id).Error; err != nil {
		respondError(c, err)
		return
	}

	// Проверяем владение через напоминание и его layby.
	var reminder models.Reminder
	if err := h.Reminders.DB.Preload("Layby").First(&reminder, notification.ReminderID).Error; err != nil {
		respondError(c, err)
		return
	}
	if reminder.Layby.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
		return
	}

	c.JSON(http.StatusOK, notification)
}
