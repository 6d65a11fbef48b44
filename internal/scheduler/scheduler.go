// Package scheduler runs the clinic's background jobs: nightly
// materialization of recurring appointment series and periodic cleanup
// of expired auth sessions.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fisiocal/config"
	"fisiocal/internal/service"
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron     *cron.Cron
	services *service.Services
	cfg      config.JobsConfig
	logger   *zap.Logger
}

func NewScheduler(services *service.Services, cfg config.JobsConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		services: services,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and launches the cron loop. It returns an
// error if either cron spec fails to parse.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.MaterializeSpec, s.materializeSeries); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.SessionCleanupSpec, s.cleanupSessions); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("materialize_spec", s.cfg.MaterializeSpec),
		zap.String("session_cleanup_spec", s.cfg.SessionCleanupSpec),
		zap.Int("horizon_weeks", s.cfg.HorizonWeeks))

	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) materializeSeries() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	inserted, err := s.services.Series.Materialize(ctx, s.cfg.HorizonWeeks)
	if err != nil {
		s.logger.Error("series materialization failed", zap.Error(err))
		return
	}

	s.logger.Info("series materialized", zap.Int64("appointments_created", inserted))
}

func (s *Scheduler) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.services.Auth.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("session cleanup failed", zap.Error(err))
		return
	}

	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int64("count", removed))
	}
}
