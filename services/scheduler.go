// services/scheduler.go
package services

import (
	"log"
	"time"

	"ambassador-platform/models"

	"github.com/go-co-op/gocron/v2"
)

// StartSessionScheduler moves past-due scheduled sessions to awaiting_report
// so hosts get nudged to record attendance.
func (s *SessionService) StartSessionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var sessions []models.Session
			now := time.Now()
			err := s.DB.Where("status = ? AND starts_at <= ?", models.SessionScheduled, now).
				Find(&sessions).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, sess := range sessions {
				sess.Status = models.SessionAwaitingReport
				if err := s.DB.Save(&sess).Error; err != nil {
					log.Printf("[Scheduler] Failed to flag session %s: %v", sess.ID, err)
				} else {
					log.Printf("✅ Session awaiting attendance report: %s", sess.Title)
				}
			}
		}),
	)
}

// StartExodeSyncScheduler refreshes every linked user's cached course points
// once a day. The cache can lag — this is the periodic correction.
func (s *ExodeService) StartExodeSyncScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			synced, failed := s.SyncAllLinked()
			log.Printf("🔁 Nightly exode sync done: %d synced, %d failed", synced, failed)
		}),
	)
}
