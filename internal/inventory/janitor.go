package inventory

import (
	"context"
	"time"

	"cineseat/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Janitor periodically clears lapsed holds back to AVAILABLE. This is
// housekeeping only: the hold predicate and every reader already treat lapsed
// holds as available, so nothing blocks if the sweep stops running.
type Janitor struct {
	scheduler gocron.Scheduler
	repo      Repository
	log       *logger.Logger
}

func NewJanitor(repo Repository, interval time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	j := &Janitor{
		scheduler: s,
		repo:      repo,
		log:       logger.GetDefault(),
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.sweep),
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.scheduler.Start()
	j.log.Info("expired-hold janitor started")
}

func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	cleared, err := j.repo.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		j.log.WithError(err).Error("expired-hold sweep failed")
		return
	}
	if cleared > 0 {
		j.log.LogExpiredSweep(ctx, cleared, time.Since(start))
	}
}
