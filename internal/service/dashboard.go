package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

const (
	// DashboardCacheKey is the cache slot for the rendered dashboard payload.
	// Writers that change the underlying aggregates invalidate it.
	DashboardCacheKey = "summary"

	// dashboardMonths is the monthly score series window.
	dashboardMonths = 12

	// rankingSize bounds the top and bottom supplier boards.
	rankingSize = 5

	// worstCriteriaSize bounds the weakest-criteria board.
	worstCriteriaSize = 4
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Repo   core.DashboardRepository // Required: aggregation queries
	Cache  core.DashboardCache      // Optional: short-TTL payload cache
	TTL    time.Duration            // Optional: cache TTL, disabled when <= 0
	Logger *slog.Logger             // Optional: structured logger
}

// DashboardService assembles the landing page payload from the aggregation
// queries, with a short-lived cache in front.
type DashboardService struct {
	repo   core.DashboardRepository
	cache  core.DashboardCache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) (*DashboardService, error) {
	if opts.Repo == nil {
		return nil, errors.New("DashboardRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "dashboard_service")
	}

	return &DashboardService{
		repo:   opts.Repo,
		cache:  opts.Cache,
		ttl:    opts.TTL,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get returns the dashboard payload, serving from cache when fresh.
func (s *DashboardService) Get(ctx context.Context) (*model.Dashboard, error) {
	if s.cache != nil {
		if cached, found, err := s.cache.Get(ctx, DashboardCacheKey); err == nil && found {
			return cached, nil
		} else if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
		}
	}

	dashboard, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, DashboardCacheKey, dashboard, s.ttl); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
		}
	}
	return dashboard, nil
}

// Stats returns only the headline counters, bypassing the composite cache.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *DashboardService) build(ctx context.Context) (*model.Dashboard, error) {
	now := s.now().UTC()
	since := monthStart(now).AddDate(0, -(dashboardMonths - 1), 0)

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	monthly, err := s.repo.MonthlyScores(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("monthly scores: %w", err)
	}
	top, err := s.repo.TopSuppliers(ctx, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("top suppliers: %w", err)
	}
	worst, err := s.repo.WorstSuppliers(ctx, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("worst suppliers: %w", err)
	}
	criteria, err := s.repo.WorstCriteria(ctx, worstCriteriaSize)
	if err != nil {
		return nil, fmt.Errorf("worst criteria: %w", err)
	}

	return &model.Dashboard{
		Stats:          *stats,
		MonthlyScores:  monthly,
		TopSuppliers:   top,
		WorstSuppliers: worst,
		WorstCriteria:  criteria,
		GeneratedAt:    now,
	}, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
