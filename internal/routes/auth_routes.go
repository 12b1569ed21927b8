// pay-by-plan/internal/routes/auth_routes.go
package routes

import "github.com/gin-gonic/gin"

// RegisterAuthRoutes регистрирует публичные маршруты для аутентификации.
// Эти маршруты не требуют middleware для проверки токена.
func RegisterAuthRoutes(r *gin.Engine, h *Handlers) {
	// Главная страница для неавторизованных - форма входа.
	r.GET("/", h.Auth.ShowLoginPage)

	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	r.GET("/register", h.Auth.ShowRegisterPage)
	r.POST("/register", h.Auth.Register)
}
