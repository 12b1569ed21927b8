// pay-by-plan/internal/routes/api_routes.go
package routes

import "github.com/gin-gonic/gin"

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	apiGroup := api.Group("/api")
	{
		// --- LAYBY ---
		laybys := apiGroup.Group("/laybys")
		{
			laybys.GET("", h.Laybys.List)
			laybys.POST("", h.Laybys.Create)
			laybys.GET("/overdue", h.Laybys.Overdue)
			laybys.GET("/export", h.Laybys.Export)
			laybys.GET("/:id", h.Laybys.Get)
			laybys.PUT("/:id", h.Laybys.Update)
			laybys.DELETE("/:id", h.Laybys.Delete)
			laybys.POST("/:id/complete", h.Laybys.Complete)
			laybys.PATCH("/:id/deactivate", h.Laybys.Deactivate)
			laybys.GET("/:id/plan", h.Laybys.SuggestPlan)
		}

		// --- ПЛАТЕЖИ ---
		payments := apiGroup.Group("/payments")
		{
			payments.GET("", h.Payments.List)
			payments.POST("", h.Payments.Create)
			payments.GET("/layby-payments", h.Payments.LaybyPayments)
			payments.GET("/summary", h.Payments.Summary)
			payments.GET("/recent", h.Payments.Recent)
			payments.GET("/:id", h.Payments.Get)
			payments.PUT("/:id", h.Payments.Update)
			payments.DELETE("/:id", h.Payments.Delete)
		}

		// --- НАПОМИНАНИЯ ---
		reminders := apiGroup.Group("/reminders")
		{
			reminders.GET("", h.Reminders.List)
			reminders.POST("", h.Reminders.Create)
			reminders.GET("/upcoming", h.Reminders.Upcoming)
			reminders.POST("/process-due", h.Reminders.ProcessDue)
			reminders.GET("/:id", h.Reminders.Get)
			reminders.DELETE("/:id", h.Reminders.Delete)
			reminders.POST("/:id/toggle-active", h.Reminders.ToggleActive)
			reminders.GET("/:id/notification-history", h.Reminders.NotificationHistory)
			reminders.POST("/:id/reset-schedule", h.Reminders.ResetSchedule)
		}

		// --- УВЕДОМЛЕНИЯ (только чтение) ---
		notifications := apiGroup.Group("/notifications")
		{
			notifications.GET("", h.Notifications.List)
			notifications.GET("/recent", h.Notifications.Recent)
			notifications.GET("/:id", h.Notifications.Get)
		}

		// --- ДАШБОРД ---
		dashboard := apiGroup.Group("/dashboard")
		{
			dashboard.GET("/overview", h.Dashboard.Overview)
			dashboard.GET("/statistics", h.Dashboard.Statistics)
		}

		// --- ШАБЛОНЫ ГРАФИКОВ ---
		planTemplates := apiGroup.Group("/plan-templates")
		{
			planTemplates.GET("", h.PlanTemplates.List)
			planTemplates.POST("", h.PlanTemplates.Create)
			planTemplates.GET("/:id", h.PlanTemplates.Get)
			planTemplates.DELETE("/:id", h.PlanTemplates.Delete)
		}

		// --- ПРОФИЛЬ ---
		profile := apiGroup.Group("/profile")
		{
			profile.GET("", h.Profile.Get)
			profile.PUT("", h.Profile.Update)
		}
	}
}
