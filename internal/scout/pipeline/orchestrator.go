// Package pipeline composes the scout stages per campaign: query build,
// discovery search, recency filter, influence filter, dedup, publish, mark
// seen. It owns the single-run lock and per-campaign failure isolation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/discovery"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/filter"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/query"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logger"
	"github.com/harunalpak/agentic-traffic-booster/pkg/metrics"
	"github.com/harunalpak/agentic-traffic-booster/pkg/resilience"
	"github.com/harunalpak/agentic-traffic-booster/pkg/tracing"
)

// CampaignSource supplies the campaigns to scout. Implemented by the
// campaign-service HTTP client.
type CampaignSource interface {
	Active(ctx context.Context) ([]scout.Campaign, error)
	GetByID(ctx context.Context, id int64) (*scout.Campaign, error)
}

// Discovery is the content-discovery surface the pipeline needs. Implemented
// by the discovery adapter.
type Discovery interface {
	Authenticate(ctx context.Context) (*discovery.Session, error)
	Invalidate()
	Search(ctx context.Context, session *discovery.Session, q string, limit int, mode scout.SearchMode) ([]scout.RawCandidate, error)
	LookupInfluence(ctx context.Context, session *discovery.Session, author string) (scout.Profile, error)
	BreakerState() resilience.State
}

// SeenCache is the dedup surface. Implemented by the seen cache client.
type SeenCache interface {
	FilterUnseen(ctx context.Context, candidates []scout.Candidate) ([]scout.Candidate, error)
	MarkSeen(ctx context.Context, candidates []scout.Candidate, campaignID int64) int
}

// Publisher sends a campaign batch and reports how many were confirmed.
type Publisher interface {
	Publish(ctx context.Context, campaignID int64, candidates []scout.Candidate) int
}

// Orchestrator drives one scout run at a time over all active campaigns.
type Orchestrator struct {
	campaigns CampaignSource
	discovery Discovery
	seenCache SeenCache
	publisher Publisher
	cfg       config.ScoutConfig
	metrics   *metrics.Metrics

	running atomic.Bool
	runSeq  atomic.Int64
	logger  *slog.Logger
}

// New wires the orchestrator. metrics may be nil in tests.
func New(campaigns CampaignSource, disc Discovery, seenCache SeenCache, publisher Publisher, cfg config.ScoutConfig, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		campaigns: campaigns,
		discovery: disc,
		seenCache: seenCache,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
		logger:    slog.Default().With("component", "scout-pipeline"),
	}
}

// Run executes one full scout pass over all active campaigns. A second Run
// while one is in flight returns ErrRunInProgress immediately; overlapping
// triggers are skipped, never queued. An unreachable campaign source is
// fail-soft: the run completes empty and the next interval retries.
func (o *Orchestrator) Run(ctx context.Context) (*scout.RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrRunInProgress
	}
	defer o.running.Store(false)

	runID := fmt.Sprintf("scout-%d-%d", time.Now().Unix(), o.runSeq.Add(1))
	ctx = logger.WithRunID(ctx, runID)
	ctx, span := tracing.StartSpan(ctx, "scout-run", runID)
	defer func() {
		span.End()
		span.Log()
	}()

	log := logger.FromContext(ctx).With("component", "scout-pipeline")
	log.Info("scout run starting")

	summary := &scout.RunSummary{StartedAt: time.Now().UTC()}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		o.observeRun(summary)
		log.Info("scout run summary",
			"campaigns_processed", summary.CampaignsProcessed,
			"campaigns_failed", summary.CampaignsFailed,
			"total_found", summary.TotalFound,
			"total_published", summary.TotalPublished,
			"duration", summary.Duration.Round(time.Millisecond),
		)
	}()

	campaigns, err := o.campaigns.Active(ctx)
	if err != nil {
		log.Warn("campaign source unavailable, running with empty campaign list", "error", err)
		return summary, nil
	}
	if len(campaigns) == 0 {
		log.Info("no active campaigns, skipping tweet scouting")
		return summary, nil
	}
	log.Info("processing active campaigns", "count", len(campaigns))

	o.processAll(ctx, campaigns, summary)
	return summary, nil
}

// RunCampaign executes the pipeline for a single campaign by ID, used by the
// -campaign debug flag. The single-run lock applies here too.
func (o *Orchestrator) RunCampaign(ctx context.Context, id int64) (*scout.RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrRunInProgress
	}
	defer o.running.Store(false)

	summary := &scout.RunSummary{StartedAt: time.Now().UTC()}
	campaign, err := o.campaigns.GetByID(ctx, id)
	if err != nil {
		return summary, fmt.Errorf("fetching campaign %d: %w", id, err)
	}
	o.processAll(ctx, []scout.Campaign{*campaign}, summary)
	summary.Duration = time.Since(summary.StartedAt)
	return summary, nil
}

// processAll walks the campaigns strictly sequentially with a short pause
// between them to bound burst load on the shared discovery session. A
// campaign failure is isolated; a discovery auth failure invalidates the
// session and fails the run's remaining discovery-dependent work.
func (o *Orchestrator) processAll(ctx context.Context, campaigns []scout.Campaign, summary *scout.RunSummary) {
	log := logger.FromContext(ctx).With("component", "scout-pipeline")
	authFailed := false

	for i, campaign := range campaigns {
		if authFailed {
			summary.CampaignsFailed++
			log.Debug("skipping campaign, discovery unavailable for the rest of this run",
				"campaign_id", campaign.ID, "campaign_name", campaign.Name)
			continue
		}

		q, err := query.Build(campaign)
		if errors.Is(err, apperrors.ErrNoQuery) {
			log.Warn("skipping campaign, no search query could be built",
				"campaign_id", campaign.ID, "campaign_name", campaign.Name)
			continue
		}

		if err := o.processCampaign(ctx, campaign, q, summary); err != nil {
			summary.CampaignsFailed++
			o.countFailed()
			log.Error("error processing campaign",
				"campaign_id", campaign.ID,
				"campaign_name", campaign.Name,
				"error", err,
			)
			if errors.Is(err, apperrors.ErrDiscoveryAuth) {
				o.discovery.Invalidate()
				authFailed = true
				log.Warn("discovery authentication failed, remaining campaigns fail for this run")
			}
		} else {
			summary.CampaignsProcessed++
			o.countProcessed()
		}

		if i < len(campaigns)-1 && !authFailed {
			select {
			case <-time.After(o.cfg.CampaignPause):
			case <-ctx.Done():
				log.Warn("run cancelled between campaigns", "remaining", len(campaigns)-i-1)
				return
			}
		}
	}
}

// processCampaign runs the stage machine for one campaign. Every stage that
// yields zero items ends the campaign early with its own logged reason. A
// candidate is marked seen only after its batch is confirmed published.
func (o *Orchestrator) processCampaign(ctx context.Context, campaign scout.Campaign, q string, summary *scout.RunSummary) error {
	ctx, span := tracing.StartChildSpan(ctx, "campaign")
	span.SetAttr("campaign_id", campaign.ID)
	defer span.End()

	log := logger.FromContext(ctx).With(
		"component", "scout-pipeline",
		"campaign_id", campaign.ID,
		"campaign_name", campaign.Name,
	)
	log.Info("scouting campaign", "query", q, "channel", campaign.Channel)

	session, err := o.discovery.Authenticate(ctx)
	if err != nil {
		return err
	}

	limit := o.cfg.MaxTweetsPerCampaign
	if n, ok := campaign.MaxTweetsPerScan(); ok && n > 0 {
		limit = n
	}
	mode := scout.ResolveSearchMode(o.cfg.SearchMode)
	if name := campaign.SearchModeName(); name != "" {
		mode = scout.ResolveSearchMode(name)
	}

	raws, err := o.discovery.Search(ctx, session, q, limit, mode)
	if err != nil {
		return fmt.Errorf("searching tweets: %w", err)
	}
	summary.TotalFound += len(raws)
	o.countFound(len(raws))
	if len(raws) == 0 {
		log.Info("no raw candidates found")
		return nil
	}

	windowMinutes := o.cfg.RecentWindowMinutes
	if n, ok := campaign.RecentWindowMinutes(); ok && n > 0 {
		windowMinutes = n
	}
	recent := filter.Recent(raws, time.Duration(windowMinutes)*time.Minute, time.Now().UTC())
	o.countDropped("stale", len(raws)-len(recent))
	if len(recent) == 0 {
		log.Info("no candidates within recency window", "window_minutes", windowMinutes, "stale", len(raws))
		return nil
	}

	influence := filter.NewInfluence(func(ctx context.Context, author string) (scout.Profile, error) {
		return o.discovery.LookupInfluence(ctx, session, author)
	}, o.cfg.MinFollowers)
	qualified, lookupFailed := influence.Apply(ctx, campaign, recent)
	o.countDropped("lookup_failed", lookupFailed)
	o.countDropped("below_threshold", len(recent)-len(qualified)-lookupFailed)
	o.observeBreaker()
	if len(qualified) == 0 {
		log.Info("no candidates above influence threshold",
			"threshold", influence.Threshold(campaign),
			"checked", len(recent),
		)
		return nil
	}

	unseen, err := o.seenCache.FilterUnseen(ctx, qualified)
	if err != nil {
		// Fail-open: unseen already holds the full input.
		o.countFailOpen()
		log.Warn("seen cache unavailable, publishing without dedup", "error", err)
	}
	o.countSeenHits(len(qualified) - len(unseen))
	if len(unseen) == 0 {
		log.Info("no unseen candidates", "already_seen", len(qualified))
		return nil
	}

	published := o.publisher.Publish(ctx, campaign.ID, unseen)
	summary.TotalPublished += published
	if published == 0 {
		o.countDeadLetter()
		log.Warn("publish failed, batch routed to dead letter", "count", len(unseen))
		return nil
	}
	o.countPublished(published)
	span.SetAttr("published", published)

	o.seenCache.MarkSeen(ctx, unseen, campaign.ID)
	log.Info("campaign scouting complete", "found", len(raws), "published", published)
	return nil
}

func (o *Orchestrator) observeRun(summary *scout.RunSummary) {
	if o.metrics == nil {
		return
	}
	o.metrics.RunsTotal.WithLabelValues("completed").Inc()
	o.metrics.RunDuration.Observe(summary.Duration.Seconds())
}

func (o *Orchestrator) observeBreaker() {
	if o.metrics == nil {
		return
	}
	o.metrics.CircuitBreakerState.WithLabelValues("influence-lookup").Set(float64(o.discovery.BreakerState()))
}

func (o *Orchestrator) countProcessed() {
	if o.metrics != nil {
		o.metrics.CampaignsProcessed.Inc()
	}
}

func (o *Orchestrator) countFailed() {
	if o.metrics != nil {
		o.metrics.CampaignsFailed.Inc()
	}
}

func (o *Orchestrator) countFound(n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.CandidatesFound.Add(float64(n))
	}
}

func (o *Orchestrator) countDropped(reason string, n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.CandidatesDropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (o *Orchestrator) countPublished(n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.CandidatesPublished.Add(float64(n))
	}
}

func (o *Orchestrator) countDeadLetter() {
	if o.metrics != nil {
		o.metrics.DeadLetterTotal.Inc()
	}
}

func (o *Orchestrator) countSeenHits(n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.SeenCacheHits.Add(float64(n))
	}
}

func (o *Orchestrator) countFailOpen() {
	if o.metrics != nil {
		o.metrics.SeenCacheFailOpenTotal.Inc()
	}
}
