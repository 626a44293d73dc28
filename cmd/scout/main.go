// Command scout starts the tweet scout worker.
//
// On a cron-derived interval the worker fetches active campaigns from the
// campaign service, searches the discovery capability for matching tweets,
// filters them by recency and author influence, drops already-seen tweets via
// the shared Redis cache, and publishes the remainder to Kafka with a
// dead-letter fallback. Prometheus metrics and health probes are served on a
// side port.
//
// Usage:
//
//	go run ./cmd/scout [-config configs/development.yaml] [-once] [-campaign id] [-flush-seen]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout/campaigns"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/discovery"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/pipeline"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/publish"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/scheduler"
	"github.com/harunalpak/agentic-traffic-booster/internal/scout/seen"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	"github.com/harunalpak/agentic-traffic-booster/pkg/health"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logger"
	"github.com/harunalpak/agentic-traffic-booster/pkg/metrics"
	"github.com/harunalpak/agentic-traffic-booster/pkg/redis"
)

// main loads configuration, wires the pipeline, and runs the scheduler until
// SIGINT/SIGTERM. All shared resources (discovery session, Kafka producers,
// Redis connection) are released on every exit path.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single scout pass and exit")
	campaignID := flag.Int64("campaign", 0, "scout a single campaign by id and exit")
	flushSeen := flag.Bool("flush-seen", false, "clear the seen-tweet cache and exit")
	flag.Parse()

	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("tweet scout service starting",
		"kafka_brokers", cfg.Kafka.Brokers,
		"campaign_service", cfg.Campaigns.BaseURL,
		"interval_minutes", cfg.Scout.IntervalMinutes,
		"run_on_startup", cfg.Scout.RunOnStartup,
	)

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("connected to redis", "addr", cfg.Redis.Addr)

	tweetProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.NewTweets)
	defer tweetProducer.Close()
	deadLetterProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DeadLetter)
	defer deadLetterProducer.Close()
	slog.Info("kafka producers initialized",
		"topic", cfg.Kafka.Topics.NewTweets,
		"dead_letter_topic", cfg.Kafka.Topics.DeadLetter,
	)

	campaignClient := campaigns.New(cfg.Campaigns)
	adapter := discovery.NewAdapter(cfg.Discovery)
	seenCache := seen.New(rdb, cfg.Redis.SeenTTL)
	publisher := publish.New(tweetProducer, deadLetterProducer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flushSeen {
		deleted, err := seenCache.Clear(ctx)
		if err != nil {
			slog.Error("failed to clear seen cache", "error", err)
			os.Exit(1)
		}
		slog.Info("seen cache cleared", "keys_deleted", deleted)
		return
	}

	var m *metrics.Metrics
	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		checker := health.NewChecker()
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := rdb.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
		checker.Register("campaign-service", campaignSourceCheck(cfg.Campaigns.BaseURL))
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port, checker)
	}

	orchestrator := pipeline.New(campaignClient, adapter, seenCache, publisher, cfg.Scout, m)

	if *campaignID != 0 {
		summary, err := orchestrator.RunCampaign(ctx, *campaignID)
		if err != nil {
			slog.Error("single-campaign run failed", "campaign_id", *campaignID, "error", err)
			os.Exit(1)
		}
		slog.Info("single-campaign run complete",
			"campaign_id", *campaignID,
			"found", summary.TotalFound,
			"published", summary.TotalPublished,
		)
		return
	}

	if *once {
		if _, err := orchestrator.Run(ctx); err != nil {
			slog.Error("scout run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Runs are deliberately not bound to the signal context: an in-flight
	// run's network calls finish or time out naturally during shutdown.
	sched := scheduler.New(orchestrator, cfg.Scout, m)
	if err := sched.Start(context.Background()); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	slog.Info("tweet scout service is running")

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Let an in-flight run finish before releasing shared resources.
	select {
	case <-sched.Stop().Done():
	case <-time.After(2 * time.Minute):
		slog.Warn("timed out waiting for in-flight run, shutting down anyway")
	}
	if shutdownMetrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown error", "error", err)
		}
	}
	slog.Info("tweet scout service stopped")
}

// campaignSourceCheck probes the campaign service's campaigns endpoint.
func campaignSourceCheck(baseURL string) health.Check {
	client := &http.Client{Timeout: 3 * time.Second}
	return func(ctx context.Context) health.ComponentHealth {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/campaigns?status=ACTIVE", nil)
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		resp, err := client.Do(req)
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: fmt.Sprintf("status %d", resp.StatusCode)}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}
