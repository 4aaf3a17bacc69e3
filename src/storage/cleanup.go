package storage

import (
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"

	"github.com/robfig/cron/v3"
)

// -----------------------------------------------------------------------------
// CleanupScheduler runs the store's stale-record cleanup on a cron schedule.
// Records not refreshed within the retention window are dropped so the cache
// does not grow unboundedly with assets that fell out of the catalog.
// -----------------------------------------------------------------------------

type CleanupScheduler struct {
	Config *models.MConfig
	DB     interfaces.IDatabase
	Logger *logger.Logger
	cron   *cron.Cron
}

// -----------------------------------------------------------------------------

func NewCleanupScheduler(cfg *models.MConfig, db interfaces.IDatabase, log *logger.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		Config: cfg,
		DB:     db,
		Logger: log,
		cron:   cron.New(),
	}
}

// -----------------------------------------------------------------------------

func (s *CleanupScheduler) Start() error {
	schedule := s.Config.Storage.CleanupSchedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	retention := time.Duration(s.Config.Storage.RetentionDays) * 24 * time.Hour

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.DB.CleanupStale(retention); err != nil {
			s.Logger.Error("Cleanup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.Logger.Info("Cleanup scheduled (%s, retention %d days)", schedule, s.Config.Storage.RetentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (s *CleanupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
