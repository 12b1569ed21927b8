// pay-by-plan/internal/handlers/handlers_test.go
package handlers

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// setupTestEnv поднимает временную базу и роутер, в котором вместо
// AuthMiddleware стоит заглушка с фиксированным пользователем.
func setupTestEnv(t *testing.T) (*gin.Engine, *gorm.DB, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("не удалось открыть тестовую базу: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Layby{},
		&models.Payment{},
		&models.Reminder{},
		&models.Notification{},
		&models.PlanTemplate{},
		&models.PlanInstallment{},
	); err != nil {
		t.Fatalf("миграция тестовой схемы не удалась: %v", err)
	}

	user := models.User{
		Login:        "ivan",
		Email:        "ivan@example.com",
		FullName:     "Иван Петров",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("не удалось создать тестового пользователя: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("login", user.Login)
		c.Set("email", user.Email)
		c.Set("full_name", user.FullName)
		c.Next()
	})
	return r, db, &user
}

func testLayby(t *testing.T, db *gorm.DB, user *models.User, totalCost string, startDate time.Time) *models.Layby {
	t.Helper()
	cost, err := decimal.NewFromString(totalCost)
	if err != nil {
		t.Fatalf("некорректная десятичная строка %q: %v", totalCost, err)
	}
	layby := models.Layby{
		UserID:           user.ID,
		ShopName:         "Эльдорадо",
		ItemDescription:  "Холодильник",
		TotalCost:        cost,
		PaymentFrequency: models.FrequencyMonthly,
		StartDate:        startDate,
		ExpectedEndDate:  startDate.AddDate(0, 6, 0),
		IsActive:         true,
	}
	if err := db.Create(&layby).Error; err != nil {
		t.Fatalf("не удалось создать тестовый layby: %v", err)
	}
	return &layby
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
