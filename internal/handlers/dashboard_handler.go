// pay-by-plan/internal/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
)

// DashboardHandler отдает сводки для главной страницы и графиков.
type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// Overview возвращает полную сводку пользователя.
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.Dashboard.GetOverview(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Statistics возвращает агрегаты по магазинам.
func (h *DashboardHandler) Statistics(c *gin.Context) {
	stats, err := h.Dashboard.GetStatistics(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// ShowDashboardPage рендерит главную страницу панели управления.
func (h *DashboardHandler) ShowDashboardPage(c *gin.Context) {
	overview, err := h.Dashboard.GetOverview(currentUserID(c), time.Now())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"Error": "Не удалось загрузить сводку",
		})
		return
	}

	fullName, _ := c.Get("full_name")
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User": gin.H{
			"FullName": fullName,
		},
		"Overview": overview,
	})
}
