package services

import (
	"context"
	"time"

	"github.com/modguard/modguard/internal/dto"
	"github.com/modguard/modguard/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	statsCacheKey = "report_stats"
	trendDays     = 7
)

// StatsService serves the admin read surface: filtered report lists
// and aggregate counts. Aggregates go through an opaque TTL cache so
// dashboard polling does not hammer the reports table.
type StatsService struct {
	db    *gorm.DB
	cache *gocache.Cache
	ttl   time.Duration
}

func NewStatsService(db *gorm.DB, ttl time.Duration) *StatsService {
	return &StatsService{
		db:    db,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// ListReports returns reports filtered by status, priority and
// category, newest first.
func (s *StatsService) ListReports(ctx context.Context, status, priority, category string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Stats returns aggregate counts by status, priority and category plus
// a 7-day submission trend, cached for the configured TTL.
func (s *StatsService) Stats(ctx context.Context) (*dto.ReportStatsResponse, error) {
	if cached, ok := s.cache.Get(statsCacheKey); ok {
		return cached.(*dto.ReportStatsResponse), nil
	}

	byStatus, err := s.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byPriority, err := s.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	byCategory, err := s.countBy(ctx, "category")
	if err != nil {
		return nil, err
	}
	trend, err := s.trend(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.ReportStatsResponse{
		ByStatus:    byStatus,
		ByPriority:  byPriority,
		ByCategory:  byCategory,
		Trend:       trend,
		GeneratedAt: time.Now().UTC(),
	}
	s.cache.Set(statsCacheKey, stats, s.ttl)
	return stats, nil
}

// Invalidate drops cached aggregates; called after any report write.
func (s *StatsService) Invalidate() {
	s.cache.Delete(statsCacheKey)
}

func (s *StatsService) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select(column + " as key, count(*) as count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Key] = r.Count
	}
	return counts, nil
}

func (s *StatsService) trend(ctx context.Context) ([]dto.TrendPoint, error) {
	since := time.Now().UTC().AddDate(0, 0, -(trendDays - 1)).Truncate(24 * time.Hour)

	var rows []struct {
		Day   string
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("to_char(created_at, 'YYYY-MM-DD') as day, count(*) as count").
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Day] = r.Count
	}

	// Emit every day of the window so the chart has no gaps.
	trend := make([]dto.TrendPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, dto.TrendPoint{Date: day, Count: counts[day]})
	}
	return trend, nil
}
