// Package sweeper runs the expired subscription sweep on a cron schedule.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/tool"
)

var ErrSweepInProgress = errors.New("sweep already in progress")

// Reconciler is the batch operation the scheduler triggers.
type Reconciler interface {
	UnsubscribeExpired(ctx context.Context) (*subscription.SweepResult, error)
}

type Scheduler struct {
	cfg     *config.Config
	rec     Reconciler
	log     *zap.SugaredLogger
	cron    *cron.Cron
	entry   cron.EntryID
	running atomic.Bool
}

func New(cfg *config.Config, rec Reconciler, log *zap.SugaredLogger) (*Scheduler, error) {
	loc, err := cfg.Subscription.LoadLocation()
	if err != nil {
		return nil, err
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{log}),
		cron.WithChain(cron.Recover(cronLogger{log})),
	)
	return &Scheduler{cfg: cfg, rec: rec, log: log, cron: c}, nil
}

// Start schedules the sweep when enabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Subscription.SweepEnabled {
		s.log.Infow("expired subscription sweep disabled")
		return nil
	}
	schedule := s.cfg.Subscription.SweepSchedule
	if schedule == "" {
		schedule = "@daily"
	}
	id, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep %q: %w", schedule, err)
	}
	s.entry = id
	s.cron.Start()
	s.log.Infow("expired subscription sweep scheduled", "schedule", schedule, "next", s.Next())
	return nil
}

// Stop stops scheduling and waits for a running sweep or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next scheduled run, zero when not scheduled.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	e := s.cron.Entry(s.entry)
	if e.Next.IsZero() && e.Schedule != nil {
		// the cron loop has not computed it yet
		return e.Schedule.Next(time.Now().In(s.cron.Location()))
	}
	return e.Next
}

func (s *Scheduler) tick() {
	ctx := logctx.WithTraceID(context.Background(), tool.GenerateUUIDV7())
	if _, err := s.RunOnce(ctx); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("scheduled sweep failed", "error", err)
	}
}

// RunOnce runs the sweep now unless one is already running.
func (s *Scheduler) RunOnce(ctx context.Context) (*subscription.SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)
	return s.rec.UnsubscribeExpired(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
