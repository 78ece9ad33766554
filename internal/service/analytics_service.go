package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"imgify/internal/domain"
	"imgify/internal/repository"
)

// PageViewData содержит данные о заходе на страницу
type PageViewData struct {
	UserID    *string
	SessionID string
	IPAddress string
	PagePath  string
	Referrer  *string
	UserAgent *string
	EntryTime time.Time
}

// AnalyticsService ведет учет просмотров страниц и отдает сводную
// статистику посещаемости для админки
type AnalyticsService struct {
	pageViewRepo *repository.PageViewRepository
	activityRepo *repository.ActivityLogRepository
}

func NewAnalyticsService(pageViewRepo *repository.PageViewRepository, activityRepo *repository.ActivityLogRepository) *AnalyticsService {
	return &AnalyticsService{
		pageViewRepo: pageViewRepo,
		activityRepo: activityRepo,
	}
}

// TrackPageView регистрирует заход на страницу и дублирует событие
// в журнал действий
func (s *AnalyticsService) TrackPageView(ctx context.Context, data *PageViewData) (*domain.PageView, error) {
	entryTime := data.EntryTime
	if entryTime.IsZero() {
		entryTime = time.Now()
	}

	view := &domain.PageView{
		UserID:    data.UserID,
		SessionID: data.SessionID,
		IPAddress: data.IPAddress,
		PagePath:  data.PagePath,
		Referrer:  data.Referrer,
		UserAgent: data.UserAgent,
		EntryTime: entryTime,
	}

	if err := s.pageViewRepo.Create(ctx, view); err != nil {
		return nil, fmt.Errorf("failed to track page view: %w", err)
	}

	metadata, _ := json.Marshal(map[string]string{
		"page_path":  data.PagePath,
		"session_id": data.SessionID,
	})

	entry := &domain.ActivityLog{
		UserID:      data.UserID,
		IPAddress:   data.IPAddress,
		Action:      "page_view",
		EntityType:  "page",
		Description: fmt.Sprintf("Visited %s", data.PagePath),
		Level:       "info",
		Status:      "success",
		Metadata:    metadata,
	}

	// Журнал вторичен, его ошибка не должна ломать трекинг
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		log.Printf("[Analytics] Не удалось записать событие в журнал: %v", err)
	}

	return view, nil
}

// TrackPageExit проставляет время выхода и длительность просмотра.
// Возвращает false, если открытого просмотра не нашлось.
func (s *AnalyticsService) TrackPageExit(ctx context.Context, sessionID, pagePath string, exitTime time.Time, duration *int) (bool, error) {
	if exitTime.IsZero() {
		exitTime = time.Now()
	}

	return s.pageViewRepo.CloseView(ctx, sessionID, pagePath, exitTime, duration)
}

// TrafficSummary возвращает сводку посещаемости за период
func (s *AnalyticsService) TrafficSummary(ctx context.Context, period string) (*domain.TrafficSummary, error) {
	return s.pageViewRepo.TrafficSummary(ctx, PeriodStart(period, time.Now()))
}

// Trends возвращает динамику просмотров за последние days дней
func (s *AnalyticsService) Trends(ctx context.Context, days int) ([]domain.PageViewTrend, error) {
	if days <= 0 {
		days = 7
	}
	return s.pageViewRepo.Trends(ctx, time.Now().AddDate(0, 0, -days))
}

// TopReferrers возвращает самые частые источники переходов за период
func (s *AnalyticsService) TopReferrers(ctx context.Context, period string, limit int) ([]domain.Referrer, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.pageViewRepo.TopReferrers(ctx, PeriodStart(period, time.Now()), limit)
}

// BounceRate возвращает долю сессий с одним просмотром за период
func (s *AnalyticsService) BounceRate(ctx context.Context, period string) (float64, error) {
	return s.pageViewRepo.BounceRate(ctx, PeriodStart(period, time.Now()))
}

// RecentLogs возвращает последние записи журнала действий
func (s *AnalyticsService) RecentLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.activityRepo.Recent(ctx, limit)
}

// PeriodStart переводит название периода в начальную дату.
// Неизвестный период считается как "today".
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return dateOnly(now)
	}
}
