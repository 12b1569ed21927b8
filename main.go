// pay-by-plan/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/mavhungutrezzy/pay-by-plan/config"
	"github.com/mavhungutrezzy/pay-by-plan/internal/handlers"
	"github.com/mavhungutrezzy/pay-by-plan/internal/mailer"
	"github.com/mavhungutrezzy/pay-by-plan/internal/routes"
	"github.com/mavhungutrezzy/pay-by-plan/internal/scheduler"
	"github.com/mavhungutrezzy/pay-by-plan/internal/services"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

func main() {
	// .env опционален: в продакшене переменные приходят из окружения.
	if err := godotenv.Load(); err != nil {
		slog.Info("Файл .env не найден, используем переменные окружения")
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	config.LoadJwtKey()
	db := config.ConnectDB()
	rdb := config.ConnectRedis()

	if err := db.AutoMigrate(
		&models.User{},
		&models.Layby{},
		&models.Payment{},
		&models.Reminder{},
		&models.Notification{},
		&models.PlanTemplate{},
		&models.PlanInstallment{},
	); err != nil {
		slog.Error("Миграция схемы не удалась", "error", err)
		os.Exit(1)
	}

	dispatcher := mailer.NewSMTPMailer()

	laybyService := services.NewLaybyService(db, dispatcher)
	paymentService := services.NewPaymentService(db)
	reminderService := services.NewReminderService(db, dispatcher)
	planService := services.NewPlanService(db)
	dashboardService := services.NewDashboardService(db, rdb)

	sched := scheduler.New(reminderService)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sched.Start(ctx)

	r := gin.Default()
	r.LoadHTMLGlob("templates/*.html")

	routes.SetupRoutes(r, &routes.Handlers{
		Auth:          handlers.NewAuthHandler(db),
		Laybys:        handlers.NewLaybyHandler(db, laybyService, planService),
		Payments:      handlers.NewPaymentHandler(db, paymentService, laybyService),
		Reminders:     handlers.NewReminderHandler(reminderService, laybyService, sched),
		Notifications: handlers.NewNotificationHandler(reminderService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		PlanTemplates: handlers.NewPlanTemplateHandler(planService),
		Profile:       handlers.NewProfileHandler(db),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Сервер запускается", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер остановился с ошибкой", "error", err)
		os.Exit(1)
	}
}
