// scheduler/scheduler.go - Background jobs for deadline sweeps and cleanup
package scheduler

import (
	"log"
	"worktrack/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler owns the cron runner so the caller controls its lifecycle.
type Scheduler struct {
	cron      *cron.Cron
	deadlines *services.DeadlineService
}

func New(db *gorm.DB) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		deadlines: services.NewDeadlineService(db),
	}
}

// Start registers the jobs and launches the runner: an hourly deadline
// sweep and a daily 02:00 purge of stale notifications.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.deadlines.CheckDeadlines(); err != nil {
			log.Printf("❌ Deadline check failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("0 2 * * *", func() {
		if err := s.deadlines.CleanupOldNotifications(); err != nil {
			log.Printf("❌ Notification cleanup failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 Notification scheduler started successfully")
	return nil
}

// Stop halts the runner; running jobs finish before it returns.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Notification scheduler stopped")
}
