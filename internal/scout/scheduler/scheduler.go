// Package scheduler fires the scout pipeline on a cron schedule derived from
// the configured interval, with an optional extra run shortly after startup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
	"github.com/harunalpak/agentic-traffic-booster/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// startupDelay gives collaborating services time to come up before the
// optional startup run.
const startupDelay = 5 * time.Second

// Runner executes one scout run. Implemented by the pipeline orchestrator,
// whose single-run lock turns overlapping triggers into ErrRunInProgress.
type Runner interface {
	Run(ctx context.Context) (*scout.RunSummary, error)
}

// Scheduler owns the cron instance driving the scout runs.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	cfg     config.ScoutConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Scheduler. metrics may be nil in tests.
func New(runner Runner, cfg config.ScoutConfig, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "scout-scheduler"),
	}
}

// CronSpec derives the cron expression for an interval in minutes: minute
// steps under an hour, hour steps on whole hours, and a 30-minute default
// for anything irregular.
func CronSpec(minutes int) string {
	if minutes > 0 && minutes < 60 {
		return fmt.Sprintf("*/%d * * * *", minutes)
	}
	if minutes >= 60 && minutes%60 == 0 {
		return fmt.Sprintf("0 */%d * * *", minutes/60)
	}
	return "*/30 * * * *"
}

// Start registers the recurring job and launches the cron loop. When
// runOnStartup is set, one extra run fires after a short settle delay. The
// given ctx bounds every triggered run.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := CronSpec(s.cfg.IntervalMinutes)
	if _, err := s.cron.AddFunc(spec, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("scheduling scout job %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("scout scheduler started",
		"cron", spec,
		"interval_minutes", s.cfg.IntervalMinutes,
		"run_on_startup", s.cfg.RunOnStartup,
	)

	if s.cfg.RunOnStartup {
		time.AfterFunc(startupDelay, func() {
			s.logger.Info("running initial scout on startup")
			s.trigger(ctx)
		})
	}
	return nil
}

// Stop halts the cron loop and returns a context that is done once any
// in-flight run has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scout scheduler stopping")
	return s.cron.Stop()
}

// trigger runs the pipeline once. An overlapping trigger is skipped and
// logged, never queued or run in parallel.
func (s *Scheduler) trigger(ctx context.Context) {
	summary, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrRunInProgress) {
			s.logger.Warn("previous scout run still in flight, skipping this trigger")
			s.countRun("skipped")
			return
		}
		s.logger.Error("scout run failed", "error", err)
		s.countRun("failed")
		return
	}
	s.logger.Info("next scout run scheduled",
		"interval_minutes", s.cfg.IntervalMinutes,
		"last_published", summary.TotalPublished,
	)
}

func (s *Scheduler) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.RunsTotal.WithLabelValues(outcome).Inc()
	}
}
