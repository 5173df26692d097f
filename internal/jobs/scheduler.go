// Package jobs runs the background maintenance tasks: overdue-invoice
// sweeps and the pending-review counter the dashboard badge reads.
package jobs

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
)

const pendingReviewKey = "jobs:pending_review_count"

type Scheduler struct {
	cron     *cron.Cron
	invoices invoices.Store
	projects projects.Store
	redis    *redis.Client // optional; counter publication skipped when nil
}

func NewScheduler(invStore invoices.Store, projStore projects.Store, rdb *redis.Client) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		invoices: invStore,
		projects: projStore,
		redis:    rdb,
	}
}

// Start registers the nightly run at 12:00AM and begins the schedule.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("0 0 0 * * *", func() {
		s.RunNightly(context.Background())
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (running nightly at 12:00AM)")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunNightly executes one sweep immediately. Exposed so the demo seed and
// tests can trigger it without waiting for the schedule.
func (s *Scheduler) RunNightly(ctx context.Context) {
	log.Println("Nightly job started (overdue sweep + review counter)...")

	n, err := s.invoices.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d invoices overdue", n)
	}

	s.publishPendingReviewCount(ctx)

	log.Println("Nightly job completed at:", time.Now().Format(time.RFC1123))
}

// publishPendingReviewCount counts projects sitting in the review queues and
// caches the total in redis for the admin dashboard badge.
func (s *Scheduler) publishPendingReviewCount(ctx context.Context) {
	if s.redis == nil {
		return
	}

	total := 0
	for _, st := range []pipeline.Status{pipeline.StatusPendingAgentReview, pipeline.StatusPendingAdminReview} {
		list, err := s.projects.List(ctx, projects.Filter{Status: st})
		if err != nil {
			log.Printf("Review count failed: %v", err)
			return
		}
		total += len(list)
	}

	if err := s.redis.Set(ctx, pendingReviewKey, strconv.Itoa(total), 0).Err(); err != nil {
		log.Printf("Review count publish failed: %v", err)
		return
	}
	log.Printf("Pending review count: %d", total)
}
