// pay-by-plan/internal/services/dashboard_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/config"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// Сводка по дашборду живет в кэше недолго: данные пользователь меняет
// сам и ждет, что после платежа цифры быстро обновятся.
const overviewCacheTTL = 5 * time.Minute

// DashboardService - read-only агрегации поверх сущностей ядра.
// Собственных инвариантов у него нет, только выборки и суммы.
type DashboardService struct {
	DB  *gorm.DB
	RDB *redis.Client // nil = кэширование отключено
}

func NewDashboardService(db *gorm.DB, rdb *redis.Client) *DashboardService {
	return &DashboardService{DB: db, RDB: rdb}
}

// LaybySummary - строка списка layby в сводке.
type LaybySummary struct {
	ID               uint            `json:"id"`
	ShopName         string          `json:"shopName"`
	ItemDescription  string          `json:"itemDescription"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	StartDate        time.Time       `json:"startDate"`
	ExpectedEndDate  time.Time       `json:"expectedEndDate"`
}

// PaymentSummaryRow - строка списка недавних платежей.
type PaymentSummaryRow struct {
	ID          uint            `json:"id"`
	LaybyID     uint            `json:"laybyId"`
	ShopName    string          `json:"shopName"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
}

// Overview - полная сводка для главной страницы.
type Overview struct {
	ActiveLaybysCount      int                 `json:"activeLaybysCount"`
	TotalRemainingBalance  decimal.Decimal     `json:"totalRemainingBalance"`
	TotalPaidLast30Days    decimal.Decimal     `json:"totalPaidLast30Days"`
	OverdueCount           int                 `json:"overdueCount"`
	UpcomingRemindersCount int                 `json:"upcomingRemindersCount"`
	RecentLaybys           []LaybySummary      `json:"recentLaybys"`
	RecentPayments         []PaymentSummaryRow `json:"recentPayments"`
}

// ShopStatistics - агрегаты по одному магазину для графиков.
type ShopStatistics struct {
	ShopName    string          `json:"shopName"`
	LaybysCount int             `json:"laybysCount"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// GetOverview собирает сводку пользователя на дату today. Результат
// кэшируется в Redis на overviewCacheTTL; промах или отсутствие Redis
// означают честный пересчет из базы.
func (s *DashboardService) GetOverview(userID uint, today time.Time) (*Overview, error) {
	cacheKey := fmt.Sprintf("dashboard:user:%d:overview", userID)

	if s.RDB != nil {
		cached, err := s.RDB.Get(config.Ctx, cacheKey).Result()
		if err == nil {
			var overview Overview
			if json.Unmarshal([]byte(cached), &overview) == nil {
				return &overview, nil
			}
			slog.Warn("Невалидная сводка в кэше, пересчитываем", "user_id", userID)
		} else if err != redis.Nil {
			slog.Error("Redis GET не удался", "error", err, "user_id", userID)
		}
	}

	overview, err := s.buildOverview(userID, today)
	if err != nil {
		return nil, err
	}

	if s.RDB != nil {
		if data, err := json.Marshal(overview); err == nil {
			if err := s.RDB.Set(config.Ctx, cacheKey, data, overviewCacheTTL).Err(); err != nil {
				slog.Error("Не удалось записать сводку в кэш", "error", err, "user_id", userID)
			}
		}
	}

	return overview, nil
}

func (s *DashboardService) buildOverview(userID uint, today time.Time) (*Overview, error) {
	today = models.DateOnly(today)
	recentSince := today.AddDate(0, 0, -30)
	upcomingUntil := today.AddDate(0, 0, 7)

	var activeLaybys []models.Layby
	if err := s.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Find(&activeLaybys).Error; err != nil {
		return nil, err
	}

	overview := Overview{
		ActiveLaybysCount:     len(activeLaybys),
		TotalRemainingBalance: decimal.Zero,
		TotalPaidLast30Days:   decimal.Zero,
		RecentLaybys:          []LaybySummary{},
		RecentPayments:        []PaymentSummaryRow{},
	}

	for i := range activeLaybys {
		layby := &activeLaybys[i]
		paid, err := sumPayments(s.DB, layby.ID)
		if err != nil {
			return nil, err
		}
		overview.TotalRemainingBalance = overview.TotalRemainingBalance.Add(layby.TotalCost.Sub(paid))
		if layby.IsOverdue(today) {
			overview.OverdueCount++
		}
	}

	// Недавно открытые layby с остатками.
	var recentLaybys []models.Layby
	if err := s.DB.Where("user_id = ? AND start_date >= ?", userID, recentSince).
		Order("start_date DESC").Find(&recentLaybys).Error; err != nil {
		return nil, err
	}
	for i := range recentLaybys {
		layby := &recentLaybys[i]
		paid, err := sumPayments(s.DB, layby.ID)
		if err != nil {
			return nil, err
		}
		overview.RecentLaybys = append(overview.RecentLaybys, LaybySummary{
			ID:               layby.ID,
			ShopName:         layby.ShopName,
			ItemDescription:  layby.ItemDescription,
			TotalCost:        layby.TotalCost,
			RemainingBalance: layby.TotalCost.Sub(paid),
			StartDate:        layby.StartDate,
			ExpectedEndDate:  layby.ExpectedEndDate,
		})
	}

	// Последние платежи за 30 дней, не больше десяти.
	var recentPayments []models.Payment
	if err := s.DB.Preload("Layby").
		Joins("JOIN laybies ON laybies.id = payments.layby_id").
		Where("laybies.user_id = ? AND payments.payment_date >= ?", userID, recentSince).
		Order("payments.payment_date DESC").Limit(10).
		Find(&recentPayments).Error; err != nil {
		return nil, err
	}
	for _, payment := range recentPayments {
		overview.TotalPaidLast30Days = overview.TotalPaidLast30Days.Add(payment.Amount)
		overview.RecentPayments = append(overview.RecentPayments, PaymentSummaryRow{
			ID:          payment.ID,
			LaybyID:     payment.LaybyID,
			ShopName:    payment.Layby.ShopName,
			Amount:      payment.Amount,
			PaymentDate: payment.PaymentDate,
		})
	}

	var upcomingCount int64
	if err := s.DB.Model(&models.Reminder{}).
		Joins("JOIN laybies ON laybies.id = reminders.layby_id").
		Where("laybies.user_id = ? AND reminders.is_active = ? AND reminders.next_reminder_date <= ?",
			userID, true, upcomingUntil).
		Count(&upcomingCount).Error; err != nil {
		return nil, err
	}
	overview.UpcomingRemindersCount = int(upcomingCount)

	return &overview, nil
}

// GetStatistics считает агрегаты по магазинам для графиков. Суммы
// складываются в Go десятичной арифметикой, как и везде.
func (s *DashboardService) GetStatistics(userID uint) ([]ShopStatistics, error) {
	var laybys []models.Layby
	if err := s.DB.Where("user_id = ?", userID).Find(&laybys).Error; err != nil {
		return nil, err
	}

	byShop := make(map[string]*ShopStatistics)
	order := []string{}
	for i := range laybys {
		layby := &laybys[i]
		stats, ok := byShop[layby.ShopName]
		if !ok {
			stats = &ShopStatistics{
				ShopName:    layby.ShopName,
				TotalCost:   decimal.Zero,
				TotalPaid:   decimal.Zero,
				Outstanding: decimal.Zero,
			}
			byShop[layby.ShopName] = stats
			order = append(order, layby.ShopName)
		}

		paid, err := sumPayments(s.DB, layby.ID)
		if err != nil {
			return nil, err
		}
		stats.LaybysCount++
		stats.TotalCost = stats.TotalCost.Add(layby.TotalCost)
		stats.TotalPaid = stats.TotalPaid.Add(paid)
		stats.Outstanding = stats.Outstanding.Add(layby.TotalCost.Sub(paid))
	}

	result := make([]ShopStatistics, 0, len(order))
	for _, shop := range order {
		result = append(result, *byShop[shop])
	}
	return result, nil
}
