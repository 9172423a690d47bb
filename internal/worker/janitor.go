// Package worker runs periodic housekeeping jobs on a gocron scheduler.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Janitor schedules sweeps of expiring in-memory state and other periodic jobs.
type Janitor struct {
	scheduler gocron.Scheduler
	logger    *zerolog.Logger
	timeout   time.Duration

	mu       sync.Mutex
	sweepers map[string]Sweeper
}

func NewJanitor(logger *zerolog.Logger) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Janitor{
		scheduler: s,
		logger:    logger,
		timeout:   time.Minute,
		sweepers:  make(map[string]Sweeper),
	}, nil
}

// AddSweep runs sw every interval.
func (j *Janitor) AddSweep(name string, every time.Duration, sw Sweeper) error {
	j.mu.Lock()
	j.sweepers[name] = sw
	j.mu.Unlock()

	_, err := j.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := sw.Sweep(time.Now()); n > 0 {
				j.logger.Debug().Str("job", name).Int("removed", n).Msg("Expired entries swept")
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// AddJob runs fn every interval with a bounded context; failures are logged.
func (j *Janitor) AddJob(name string, every time.Duration, fn func(ctx context.Context) error) error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
			defer cancel()
			if err := fn(ctx); err != nil {
				j.logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// SweepNow runs every registered sweeper once and returns the total removed.
func (j *Janitor) SweepNow(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	total := 0
	for _, sw := range j.sweepers {
		total += sw.Sweep(now)
	}
	return total
}

func (j *Janitor) Start() {
	j.scheduler.Start()
	j.logger.Info().Int("jobs", len(j.scheduler.Jobs())).Msg("Janitor started")
}

// Stop waits for running jobs and shuts the scheduler down.
func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}
