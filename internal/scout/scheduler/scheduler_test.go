package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
)

type fakeRunner struct {
	calls int
	err   error
}

func (r *fakeRunner) Run(ctx context.Context) (*scout.RunSummary, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &scout.RunSummary{}, nil
}

func TestCronSpec(t *testing.T) {
	cases := []struct {
		minutes  int
		expected string
	}{
		{1, "*/1 * * * *"},
		{15, "*/15 * * * *"},
		{30, "*/30 * * * *"},
		{59, "*/59 * * * *"},
		{60, "0 */1 * * *"},
		{120, "0 */2 * * *"},
		{90, "*/30 * * * *"},
		{0, "*/30 * * * *"},
		{-5, "*/30 * * * *"},
	}
	for _, tc := range cases {
		if got := CronSpec(tc.minutes); got != tc.expected {
			t.Errorf("CronSpec(%d) = %q, expected %q", tc.minutes, got, tc.expected)
		}
	}
}

func TestTriggerRunsPipelineOnce(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, config.ScoutConfig{IntervalMinutes: 30}, nil)

	s.trigger(context.Background())
	if runner.calls != 1 {
		t.Errorf("expected 1 run, got %d", runner.calls)
	}
}

func TestTriggerSkipsWhenRunInProgress(t *testing.T) {
	runner := &fakeRunner{err: apperrors.ErrRunInProgress}
	s := New(runner, config.ScoutConfig{IntervalMinutes: 30}, nil)

	// Must not panic or retry; the overlapping trigger is simply dropped.
	s.trigger(context.Background())
	if runner.calls != 1 {
		t.Errorf("expected a single attempt, got %d", runner.calls)
	}
}

func TestTriggerToleratesRunFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("pipeline exploded")}
	s := New(runner, config.ScoutConfig{IntervalMinutes: 30}, nil)

	s.trigger(context.Background())
	s.trigger(context.Background())
	if runner.calls != 2 {
		t.Errorf("expected failures not to stop scheduling, got %d calls", runner.calls)
	}
}

func TestStartRegistersValidCronJob(t *testing.T) {
	s := New(&fakeRunner{}, config.ScoutConfig{IntervalMinutes: 30}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-s.Stop().Done()
}
