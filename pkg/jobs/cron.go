package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/search"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron          *cron.Cron
	store         *search.Store
	retentionDays int
	logger        logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(store *search.Store, retentionDays int, log logger.Logger) *CronManager {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if log == nil {
		log = logger.Default()
	}

	return &CronManager{
		cron:          cron.New(),
		store:         store,
		retentionDays: retentionDays,
		logger:        log,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Nightly at 3 AM: purge AI search results past the retention window.
	// User-owned competitor records are never touched by this job.
	_, err := cm.cron.AddFunc("0 3 * * *", func() {
		cm.logger.Info("🕐 running nightly search result purge", "retention_days", cm.retentionDays)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		deleted, err := cm.store.DeleteOlderThan(ctx, cm.retentionDays)
		if err != nil {
			cm.logger.Error("❌ search result purge failed", "error", err)
			return
		}

		cm.logger.Info("✅ search result purge completed", "deleted", deleted)
	})
	if err != nil {
		return err
	}

	cm.logger.Info("✅ cron jobs configured", "jobs", 1)
	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Info("🚀 starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the cron scheduler and waits for running jobs.
func (cm *CronManager) Stop() {
	cm.logger.Info("🛑 stopping cron scheduler")
	<-cm.cron.Stop().Done()
}
