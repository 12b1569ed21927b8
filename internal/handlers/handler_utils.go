// pay-by-plan/internal/handlers/handler_utils.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
)

// currentUserID достает ID пользователя, положенный в контекст
// AuthMiddleware'ом. Ноль не возвращается никогда: до обработчиков без
// аутентификации запрос не доходит.
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("user_id")
	userID, _ := id.(uint)
	return userID
}

// respondError переводит доменные ошибки в HTTP-статусы:
// ValidationError - 400, "не найдено" - 404, остальное - 500.
func respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseDate разбирает дату формата YYYY-MM-DD.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
