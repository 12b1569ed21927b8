// pay-by-plan/internal/routes/dashboard_routes.go
package routes

import "github.com/gin-gonic/gin"

// RegisterDashboardRoutes регистрирует маршруты для главной панели управления.
func RegisterDashboardRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/dashboard", h.Dashboard.ShowDashboardPage)
}
