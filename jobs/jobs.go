package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const purgeTimeout = 10 * time.Second

// Purger removes unpaid checkout sessions that are past their expiry.
type Purger interface {
	PurgeExpiredCheckouts(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// Start registers the cleanup job on spec and starts the scheduler.
func Start(spec string, p Purger) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { PurgeExpired(p) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("Checkout cleanup scheduled (%s)", spec)
	return &Scheduler{cron: c}, nil
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// PurgeExpired runs one cleanup pass.
func PurgeExpired(p Purger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := p.PurgeExpiredCheckouts(ctx)
	if err != nil {
		log.Printf("Failed to delete expired checkouts: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Deleted %d expired checkouts", n)
	}
}
