// pay-by-plan/internal/services/services_test.go
package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// setupTestDB создает временную SQLite-базу со всей схемой приложения.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

// fakeDispatcher записывает вызовы вместо реальной отправки писем.
type fakeDispatcher struct {
	confirmations []uint // layby IDs
	reminders     []uint // layby IDs
	failSend      bool
}

func (f *fakeDispatcher) SendLaybyConfirmation(user *models.User, layby *models.Layby) error {
	if f.failSend {
		return errors.New("smtp: connection refused")
	}
	f.confirmations = append(f.confirmations, layby.ID)
	return nil
}

func (f *fakeDispatcher) SendLaybyReminder(user *models.User, layby *models.Layby) error {
	if f.failSend {
		return errors.New("smtp: connection refused")
	}
	f.reminders = append(f.reminders, layby.ID)
	return nil
}

func newTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Login:        "ivan",
		Email:        "ivan@example.com",
		FullName:     "Иван Петров",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("не удалось создать тестового пользователя: %v", err)
	}
	return &user
}

// newTestLayby создает layby напрямую в базе, минуя сервисные проверки.
func newTestLayby(t *testing.T, db *gorm.DB, user *models.User, totalCost string) *models.Layby {
	t.Helper()
	layby := models.Layby{
		UserID:           user.ID,
		ShopName:         "Эльдорадо",
		ItemDescription:  "Холодильник",
		TotalCost:        mustDecimal(t, totalCost),
		PaymentFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, 1, 1),
		ExpectedEndDate:  date(2024, 6, 1),
		IsActive:         true,
	}
	if err := db.Create(&layby).Error; err != nil {
		t.Fatalf("не удалось создать тестовый layby: %v", err)
	}
	return &layby
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("некорректная десятичная строка %q: %v", s, err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// assertValidationError проверяет, что ошибка является ошибкой валидации.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("ожидалась ошибка валидации, получен nil")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ожидалась *ValidationError, получено: %v", err)
	}
}
