package services

import (
	"context"
	"log"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

const (
	rankingLimit  = 10
	statsCacheTTL = 30 * time.Second
)

type ReportService struct {
	repo  ports.ReportRepository
	cache ports.StatsCache
	now   func() time.Time
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService builds the report service. cache may be nil.
func NewReportService(repo ports.ReportRepository, cache ports.StatsCache) *ReportService {
	return &ReportService{repo: repo, cache: cache, now: time.Now}
}

func (s *ReportService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx)
		if err != nil {
			log.Printf("report service: stats cache read failed: %v", err)
		} else if stats != nil {
			return stats, nil
		}
	}

	stats, err := s.repo.DashboardStats(ctx, s.now())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats, statsCacheTTL); err != nil {
			log.Printf("report service: stats cache write failed: %v", err)
		}
	}
	return stats, nil
}

func (s *ReportService) PopularBooks(ctx context.Context) ([]domain.BookRanking, error) {
	return s.repo.PopularBooks(ctx, rankingLimit)
}

func (s *ReportService) ActiveUsers(ctx context.Context) ([]domain.UserRanking, error) {
	return s.repo.ActiveUsers(ctx, rankingLimit)
}
