// Package scheduler runs a briefing on a cron schedule and keeps the most
// recent result in the cache.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/kiranshivaraju/insightreporter/internal/briefing"
	"github.com/kiranshivaraju/insightreporter/internal/cache"
	"github.com/kiranshivaraju/insightreporter/internal/session"
)

// ErrNoBriefing is returned by Latest before any scheduled run has succeeded.
var ErrNoBriefing = errors.New("no scheduled briefing")

const (
	defaultLockTTL   = 10 * time.Minute
	defaultRetention = 48 * time.Hour
	stopTimeout      = 5 * time.Second
)

// Dispatcher runs one briefing.
type Dispatcher interface {
	Dispatch(ctx context.Context, owner, sessionID string) (*briefing.Briefing, error)
}

// Scheduler dispatches briefings under the reserved "scheduled" session.
// Overlapping runs, in this process or across replicas sharing the cache,
// are skipped.
type Scheduler struct {
	svc       Dispatcher
	cache     cache.Cache
	lockTTL   time.Duration
	retention time.Duration
	holder    string
	logger    *slog.Logger

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLockTTL bounds how long a crashed run can block the next one.
func WithLockTTL(d time.Duration) Option {
	return func(s *Scheduler) { s.lockTTL = d }
}

// WithRetention sets how long the latest briefing is kept.
func WithRetention(d time.Duration) Option {
	return func(s *Scheduler) { s.retention = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a Scheduler. Call Start to begin running.
func New(svc Dispatcher, c cache.Cache, opts ...Option) *Scheduler {
	holder, err := os.Hostname()
	if err != nil {
		holder = "insightreporter"
	}
	s := &Scheduler{
		svc:       svc,
		cache:     c,
		lockTTL:   defaultLockTTL,
		retention: defaultRetention,
		holder:    fmt.Sprintf("%s:%d", holder, os.Getpid()),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate reports whether spec is a standard five-field cron expression or
// a descriptor such as "@daily".
func Validate(spec string) error {
	if _, err := rcron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid briefing schedule %q: %w", spec, err)
	}
	return nil
}

// Start registers the briefing job on spec and starts the cron loop. Jobs
// run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if err := Validate(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cronLogger{s.logger}
	c := rcron.New(
		rcron.WithLogger(logger),
		rcron.WithChain(rcron.Recover(logger), rcron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() {
		if err := s.RunOnce(runCtx); err != nil {
			s.logger.ErrorContext(runCtx, "scheduled briefing failed", "error", err)
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("registering briefing job: %w", err)
	}

	s.cron = c
	s.cancel = cancel
	c.Start()
	s.logger.Info("briefing scheduler started", "schedule", spec)
	return nil
}

// Stop halts the cron loop and waits briefly for a running job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(stopTimeout):
		s.logger.Warn("briefing scheduler stop timed out waiting for running job")
	}
	cancel()
	s.logger.Info("briefing scheduler stopped")
}

// RunOnce dispatches a single briefing unless another run holds the lock.
// A successful briefing replaces the stored latest one.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	lockKey := cache.ScheduledLockKey()
	acquired, err := s.cache.SetNX(ctx, lockKey, []byte(s.holder), s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquiring schedule lock: %w", err)
	}
	if !acquired {
		s.logger.InfoContext(ctx, "scheduled briefing skipped; another run holds the lock")
		return nil
	}
	defer func() {
		released, err := s.cache.Release(context.WithoutCancel(ctx), lockKey, []byte(s.holder))
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "failed to release schedule lock", "error", err)
		case !released:
			s.logger.WarnContext(ctx, "schedule lock expired before the briefing finished", "lock_ttl", s.lockTTL)
		}
	}()

	b, err := s.svc.Dispatch(ctx, session.Scheduled, session.Scheduled)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding scheduled briefing: %w", err)
	}
	if err := s.cache.Set(ctx, cache.ScheduledBriefingKey(), raw, s.retention); err != nil {
		return fmt.Errorf("storing scheduled briefing: %w", err)
	}
	return nil
}

// Latest returns the most recent successful scheduled briefing.
func (s *Scheduler) Latest(ctx context.Context) (*briefing.Briefing, error) {
	raw, ok, err := s.cache.Get(ctx, cache.ScheduledBriefingKey())
	if err != nil {
		return nil, fmt.Errorf("loading scheduled briefing: %w", err)
	}
	if !ok {
		return nil, ErrNoBriefing
	}
	var b briefing.Briefing
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decoding scheduled briefing: %w", err)
	}
	return &b, nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
