package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"RocSentinel/internal/model"
)

// ErrBusy is returned by RunNow when a run is already in progress.
var ErrBusy = errors.New("backtest already running")

// Job is a repeatable backtest run.
type Job interface {
	Run(ctx context.Context) (*model.BacktestResult, error)
}

// Scheduler re-runs a backtest on a cron schedule. Runs never overlap.
type Scheduler struct {
	Cron   *cron.Cron
	Job    Job
	Ctx    context.Context
	Logger zerolog.Logger

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, job Job, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Job:    job,
		Ctx:    ctx,
		Logger: logger,
	}
}

// Register adds the backtest task under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.backtestTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running backtest to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes the backtest immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() (*model.BacktestResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	return s.Job.Run(s.Ctx)
}

func (s *Scheduler) backtestTask() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Logger.Info().Msg("running scheduled backtest")
	if _, err := s.RunNow(); err != nil {
		if errors.Is(err, ErrBusy) {
			s.Logger.Warn().Msg("previous backtest still running, skipping")
			return
		}
		s.Logger.Error().Err(err).Msg("scheduled backtest failed")
	}
}
