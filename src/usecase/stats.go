package usecase

import (
	"context"
	"time"

	"resource-share/src/domain"
	"resource-share/src/logger"
	"resource-share/src/metrics"

	"github.com/sirupsen/logrus"
)

// StatsUsecase 管理画面のダッシュボード集計
type StatsUsecase interface {
	GetAdminStats(ctx context.Context) (*domain.AdminStats, error)
}

type statsUsecase struct {
	resourceRepo domain.ResourceRepository
	categoryRepo domain.CategoryRepository
	requestRepo  domain.ResourceRequestRepository
	log          *logrus.Logger
	metrics      *metrics.Recorder
	now          func() time.Time
}

// NewStatsUsecase creates a new stats usecase
func NewStatsUsecase(
	resourceRepo domain.ResourceRepository,
	categoryRepo domain.CategoryRepository,
	requestRepo domain.ResourceRequestRepository,
	log *logrus.Logger,
	rec *metrics.Recorder,
) StatsUsecase {
	if log == nil {
		log = logger.Log
	}
	return &statsUsecase{
		resourceRepo: resourceRepo,
		categoryRepo: categoryRepo,
		requestRepo:  requestRepo,
		log:          log,
		metrics:      rec,
		now:          time.Now,
	}
}

// GetAdminStats today_requests はローカル時刻の0時以降に作成された件数
func (u *statsUsecase) GetAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	var (
		stats domain.AdminStats
		err   error
	)

	if stats.TotalResources, err = u.resourceRepo.Count(ctx); err != nil {
		return nil, storeFailure(u.log, u.metrics, "stats.resources", err, nil)
	}
	if stats.TotalCategories, err = u.categoryRepo.Count(ctx); err != nil {
		return nil, storeFailure(u.log, u.metrics, "stats.categories", err, nil)
	}
	if stats.PendingRequests, err = u.requestRepo.CountByStatus(ctx, domain.StatusPending); err != nil {
		return nil, storeFailure(u.log, u.metrics, "stats.pending", err, nil)
	}
	if stats.TodayRequests, err = u.requestRepo.CountSince(ctx, startOfDay(u.now())); err != nil {
		return nil, storeFailure(u.log, u.metrics, "stats.today", err, nil)
	}

	return &stats, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
