// Package config loads and validates scout service configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Scout, Campaigns, Discovery, Kafka, Redis, Logging,
// Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Scout     ScoutConfig     `yaml:"scout"`
	Campaigns CampaignsConfig `yaml:"campaigns"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ScoutConfig controls the scan schedule and the global filter defaults used
// when a campaign does not configure its own.
type ScoutConfig struct {
	IntervalMinutes      int           `yaml:"intervalMinutes"`
	RunOnStartup         bool          `yaml:"runOnStartup"`
	MaxTweetsPerCampaign int           `yaml:"maxTweetsPerCampaign"`
	RecentWindowMinutes  int           `yaml:"recentWindowMinutes"`
	MinFollowers         int64         `yaml:"minFollowers"`
	SearchMode           string        `yaml:"searchMode"`
	CampaignPause        time.Duration `yaml:"campaignPause"`
}

// CampaignsConfig holds the campaign-service endpoint.
type CampaignsConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// DiscoveryConfig holds the scraper gateway endpoints and the login
// credentials for the shared discovery session. EnhancedURL is optional; when
// set, search and profile traffic goes through the anti-bot fetch service.
type DiscoveryConfig struct {
	BaseURL       string        `yaml:"baseUrl"`
	EnhancedURL   string        `yaml:"enhancedUrl"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	Email         string        `yaml:"email"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	NewTweets  string `yaml:"newTweets"`
	DeadLetter string `yaml:"deadLetter"`
}

// RedisConfig holds Redis connection parameters and the seen-cache TTL.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	SeenTTL  time.Duration `yaml:"seenTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks the settings the scout cannot run without. A missing value
// here is a startup-fatal configuration error.
func (c *Config) Validate() error {
	var missing []string
	if len(c.Kafka.Brokers) == 0 || (len(c.Kafka.Brokers) == 1 && c.Kafka.Brokers[0] == "") {
		missing = append(missing, "kafka.brokers")
	}
	if c.Campaigns.BaseURL == "" {
		missing = append(missing, "campaigns.baseUrl")
	}
	if c.Discovery.BaseURL == "" {
		missing = append(missing, "discovery.baseUrl")
	}
	if c.Discovery.Username == "" {
		missing = append(missing, "discovery.username")
	}
	if c.Discovery.Password == "" {
		missing = append(missing, "discovery.password")
	}
	if len(missing) > 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, "missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Scout.IntervalMinutes <= 0 {
		return apperrors.Newf(apperrors.ErrConfiguration, "scout.intervalMinutes must be positive, got %d", c.Scout.IntervalMinutes)
	}
	return nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development. Filter defaults mirror the campaign-service wizard defaults.
func defaultConfig() *Config {
	return &Config{
		Scout: ScoutConfig{
			IntervalMinutes:      30,
			RunOnStartup:         false,
			MaxTweetsPerCampaign: 10,
			RecentWindowMinutes:  180,
			MinFollowers:         150000,
			SearchMode:           "LATEST",
			CampaignPause:        time.Second,
		},
		Campaigns: CampaignsConfig{
			BaseURL: "http://localhost:8082",
			Timeout: 10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			BaseURL:       "http://localhost:8090",
			LookupTimeout: 10 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				NewTweets:  "new_tweets",
				DeadLetter: "dead_letter",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			SeenTTL:  24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads ATB_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATB_SCOUT_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scout.IntervalMinutes = n
		}
	}
	if v := os.Getenv("ATB_SCOUT_RUN_ON_STARTUP"); v != "" {
		cfg.Scout.RunOnStartup = v == "true" || v == "1"
	}
	if v := os.Getenv("ATB_SCOUT_MAX_TWEETS_PER_CAMPAIGN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scout.MaxTweetsPerCampaign = n
		}
	}
	if v := os.Getenv("ATB_SCOUT_RECENT_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scout.RecentWindowMinutes = n
		}
	}
	if v := os.Getenv("ATB_SCOUT_MIN_FOLLOWERS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Scout.MinFollowers = n
		}
	}
	if v := os.Getenv("ATB_CAMPAIGN_SERVICE_URL"); v != "" {
		cfg.Campaigns.BaseURL = v
	}
	if v := os.Getenv("ATB_DISCOVERY_URL"); v != "" {
		cfg.Discovery.BaseURL = v
	}
	if v := os.Getenv("ATB_DISCOVERY_ENHANCED_URL"); v != "" {
		cfg.Discovery.EnhancedURL = v
	}
	if v := os.Getenv("ATB_DISCOVERY_USERNAME"); v != "" {
		cfg.Discovery.Username = v
	}
	if v := os.Getenv("ATB_DISCOVERY_PASSWORD"); v != "" {
		cfg.Discovery.Password = v
	}
	if v := os.Getenv("ATB_DISCOVERY_EMAIL"); v != "" {
		cfg.Discovery.Email = v
	}
	if v := os.Getenv("ATB_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ATB_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ATB_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ATB_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ATB_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ATB_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
