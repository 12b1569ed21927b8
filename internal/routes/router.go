// pay-by-plan/internal/routes/router.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mavhungutrezzy/pay-by-plan/internal/handlers"
	"github.com/mavhungutrezzy/pay-by-plan/internal/middleware"
)

// Handlers - все обработчики приложения, собранные в main.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Laybys        *handlers.LaybyHandler
	Payments      *handlers.PaymentHandler
	Reminders     *handlers.ReminderHandler
	Notifications *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler
	PlanTemplates *handlers.PlanTemplateHandler
	Profile       *handlers.ProfileHandler
}

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine, h *Handlers) {
	// --- Публичные маршруты ---
	// Страницы входа и регистрации с их обработчиками форм.
	RegisterAuthRoutes(r, h)

	// --- Защищенная группа маршрутов ---
	// Все маршруты в этой группе требуют валидный JWT.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterDashboardRoutes(authRequired, h) // Главная панель управления
		RegisterAPIRoutes(authRequired, h)       // Все API-маршруты
	}
}
