package scheduler

import (
	"context"
	"fmt"

	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron            *cron.Cron
	refreshCtrl     *controllers.RefreshController
	verifyCtrl      *controllers.VerifyController
	metaCtrl        *controllers.MetaController
	backgroundBatch int
	logger          *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	refreshCtrl *controllers.RefreshController,
	verifyCtrl *controllers.VerifyController,
	metaCtrl *controllers.MetaController,
	backgroundBatch int,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		refreshCtrl:     refreshCtrl,
		verifyCtrl:      verifyCtrl,
		metaCtrl:        metaCtrl,
		backgroundBatch: backgroundBatch,
		logger:          logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: refresh the most degraded catalog records
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runFreshnessSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add freshness sweep job: %w", err)
	}

	// Every 10 minutes: purge expired phone verifications
	_, err = s.cron.AddFunc("*/10 * * * *", func() {
		s.verifyCtrl.PurgeExpired()
	})
	if err != nil {
		return fmt.Errorf("failed to add verification purge job: %w", err)
	}

	// Every 6 hours: rebuild filter metadata from the catalog
	_, err = s.cron.AddFunc("0 */6 * * *", func() {
		s.runMetaRebuild()
	})
	if err != nil {
		return fmt.Errorf("failed to add filter metadata job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Build filter metadata immediately so the UI has pickers on first boot
	go s.runMetaRebuild()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runFreshnessSweep executes the background refresh job
func (s *Scheduler) runFreshnessSweep() {
	s.logger.Info("Running scheduled freshness sweep")
	s.refreshCtrl.RefreshStale(context.Background(), s.backgroundBatch)
	s.logger.Info("Freshness sweep completed")
}

// runMetaRebuild executes the filter metadata rebuild job
func (s *Scheduler) runMetaRebuild() {
	if _, err := s.metaCtrl.Rebuild(); err != nil {
		s.logger.WithError(err).Error("Filter metadata rebuild failed")
	}
}
