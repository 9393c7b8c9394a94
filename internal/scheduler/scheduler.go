// Package scheduler runs the periodic retention sweep that purges stale
// recommendations for every user with history.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds the per-user purge fan-out
const sweepConcurrency = 4

// sweepTimeout caps one full sweep across all users
const sweepTimeout = 10 * time.Minute

// UserLister enumerates the users that have recommendation history.
// *db.DB satisfies it.
type UserLister interface {
	ListUserIDsWithRecommendations(ctx context.Context) ([]uuid.UUID, error)
}

// Purger removes one user's stale recommendations.
// *recommend.Engine satisfies it.
type Purger interface {
	PurgeStale(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Scheduler owns the cron entry for the retention sweep
type Scheduler struct {
	cron   *cron.Cron
	users  UserLister
	purger Purger
}

// New creates a scheduler; call Start with a cron spec to begin
func New(users UserLister, purger Purger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		users:  users,
		purger: purger,
	}
}

// Start registers the sweep under the given cron spec ("@daily",
// "0 3 * * *", ...) and begins the schedule.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("[scheduler] Retention sweep scheduled: %s", spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		log.Printf("[scheduler] Sweep failed: %v", err)
	}
}

// Sweep purges stale recommendations for every user with history,
// fanning out with bounded concurrency. Returns the total removed.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	userIDs, err := s.users.ListUserIDsWithRecommendations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for sweep: %w", err)
	}
	if len(userIDs) == 0 {
		log.Println("[scheduler] Sweep complete: no users with recommendations")
		return 0, nil
	}

	var total atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, userID := range userIDs {
		g.Go(func() error {
			removed, err := s.purger.PurgeStale(ctx, userID)
			if err != nil {
				return fmt.Errorf("purge failed for user %s: %w", userID, err)
			}
			total.Add(removed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total.Load(), err
	}

	log.Printf("[scheduler] Sweep complete: removed %d stale recommendations across %d users",
		total.Load(), len(userIDs))
	return total.Load(), nil
}
