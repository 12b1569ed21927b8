// pay-by-plan/internal/handlers/layby_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// LaybyHandler обслуживает CRUD и действия по layby.
type LaybyHandler struct {
	DB     *gorm.DB
	Laybys *services.LaybyService
	Plans  *services.PlanService
}

func NewLaybyHandler(db *gorm.DB, laybys *services.LaybyService, plans *services.PlanService) *LaybyHandler {
	return &LaybyHandler{DB: db, Laybys: laybys, Plans: plans}
}

// CreateLaybyRequest определяет структуру для входящих данных.
type CreateLaybyRequest struct {
	ShopName         string          `json:"shopName" binding:"required"`
	ItemDescription  string          `json:"itemDescription" binding:"required"`
	TotalCost        decimal.Decimal `json:"totalCost" binding:"required"`
	PaymentFrequency string          `json:"paymentFrequency" binding:"required"`
	StartDate        string          `json:"startDate"` // YYYY-MM-DD, пусто = сегодня
	ExpectedEndDate  string          `json:"expectedEndDate" binding:"required"`
}

type UpdateLaybyRequest struct {
	ShopName         *string `json:"shopName"`
	ItemDescription  *string `json:"itemDescription"`
	PaymentFrequency *string `json:"paymentFrequency"`
	StartDate        *string `json:"startDate"`
	ExpectedEndDate  *string `json:"expectedEndDate"`
}

// LaybyDetailResponse - layby с производными полями.
type LaybyDetailResponse struct {
	models.Layby
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	ProgressPercent  int             `json:"progressPercent"`
	IsOverdue        bool            `json:"isOverdue"`
}

// List возвращает layby текущего пользователя с фильтрами и пагинацией.
func (h *LaybyHandler) List(c *gin.Context) {
	filter, err := laybyFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
		return
	}

	query := h.DB.Model(&models.Layby{}).Scopes(filter.Scope(currentUserID(c)))

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		respondError(c, err)
		return
	}

	// Применяем пагинацию и сортировку
	var laybys []models.Layby
	if err := query.Scopes(Paginate(c)).Order("start_date DESC").Find(&laybys).Error; err != nil {
		respondError(c, err)
		return
	}
	if laybys == nil {
		laybys = make([]models.Layby, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, laybys, totalRows))
}

// Create регистрирует новый layby.
func (h *LaybyHandler) Create(c *gin.Context) {
	var req CreateLaybyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	input := services.CreateLaybyInput{
		ShopName:         req.ShopName,
		ItemDescription:  req.ItemDescription,
		TotalCost:        req.TotalCost,
		PaymentFrequency: req.PaymentFrequency,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
			return
		}
		input.StartDate = start
	}
	end, err := parseDate(req.ExpectedEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
		return
	}
	input.ExpectedEndDate = end

	var user models.User
	if err := h.DB.First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, err)
		return
	}

	layby, err := h.Laybys.Create(&user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, layby)
}

// Get возвращает layby с остатком и прогрессом.
func (h *LaybyHandler) Get(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}
	h.respondDetail(c, layby)
}

// Update применяет частичное обновление.
func (h *LaybyHandler) Update(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}

	var req UpdateLaybyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	input := services.UpdateLaybyInput{
		ShopName:         req.ShopName,
		ItemDescription:  req.ItemDescription,
		PaymentFrequency: req.PaymentFrequency,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
			return
		}
		input.StartDate = &start
	}
	if req.ExpectedEndDate != nil {
		end, err := parseDate(*req.ExpectedEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
			return
		}
		input.ExpectedEndDate = &end
	}

	if err := h.Laybys.Update(layby, input); err != nil {
		respondError(c, err)
		return
	}
	h.respondDetail(c, layby)
}

// Delete безвозвратно удаляет layby со всеми платежами и напоминанием.
func (h *LaybyHandler) Delete(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}
	if err := h.Laybys.Delete(layby); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Overdue возвращает просроченные layby пользователя.
func (h *LaybyHandler) Overdue(c *gin.Context) {
	laybys, err := h.Laybys.OverdueLaybys(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": laybys})
}

// Complete - административная установка флага завершенности. Значение
// передается явно: повторный вызов с тем же телом ничего не переключает.
func (h *LaybyHandler) Complete(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}
	var body struct {
		Complete *bool `json:"complete" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите целевое значение поля complete"})
		return
	}
	if err := h.Laybys.SetComplete(layby, *body.Complete); err != nil {
		respondError(c, err)
		return
	}
	h.respondDetail(c, layby)
}

// Deactivate - административная установка флага активности, тоже с явным
// целевым значением.
func (h *LaybyHandler) Deactivate(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите целевое значение поля active"})
		return
	}
	if err := h.Laybys.SetActive(layby, *body.Active); err != nil {
		respondError(c, err)
		return
	}
	h.respondDetail(c, layby)
}

// SuggestPlan генерирует предлагаемый график взносов по шаблону.
func (h *LaybyHandler) SuggestPlan(c *gin.Context) {
	layby, ok := h.ownedLayby(c)
	if !ok {
		return
	}
	templateID, err := strconv.ParseUint(c.Query("template_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID шаблона"})
		return
	}

	schedule, err := h.Plans.Generate(layby, uint(templateID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

// Export выгружает layby пользователя в Excel.
func (h *LaybyHandler) Export(c *gin.Context) {
	laybys, err := h.Laybys.ListForUser(currentUserID(c), services.LaybyFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Laybys"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Shop", "Item", "Total cost", "Remaining balance", "Start date", "Expected end date", "Active", "Complete"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i := range laybys {
		layby := &laybys[i]
		remaining, err := h.Laybys.RemainingBalance(layby)
		if err != nil {
			respondError(c, err)
			return
		}
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), layby.ShopName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), layby.ItemDescription)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), layby.TotalCost.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), remaining.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), layby.StartDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), layby.ExpectedEndDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), layby.IsActive)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), layby.IsComplete)
	}

	fileName := fmt.Sprintf("laybys_%s.xlsx", uuid.NewString())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось записать Excel-файл"})
	}
}

// ownedLayby загружает layby из пути и проверяет, что он принадлежит
// текущему пользователю. Чужой layby неотличим от несуществующего.
func (h *LaybyHandler) ownedLayby(c *gin.Context) (*models.Layby, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID layby"})
		return nil, false
	}

	layby, err := h.Laybys.Get(uint(id))
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

func (h *LaybyHandler) respondDetail(c *gin.Context, layby *models.Layby) {
	remaining, err := h.Laybys.RemainingBalance(layby)
	if err != nil {
		respondError(c, err)
		return
	}
	progress, err := h.Laybys.PaymentProgress(layby)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LaybyDetailResponse{
		Layby:            *layby,
		RemainingBalance: remaining,
		ProgressPercent:  progress,
		IsOverdue:        layby.IsOverdue(time.Now()),
	})
}

func laybyFilterFromQuery(c *gin.Context) (services.LaybyFilter, error) {
	var filter services.LaybyFilter
	if v := c.Query("start_date"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDateFrom = &date
	}
	if v := c.Query("end_date"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.EndDateTo = &date
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	if v := c.Query("is_complete"); v != "" {
		complete := v == "true"
		filter.IsComplete = &complete
	}
	return filter, nil
}
