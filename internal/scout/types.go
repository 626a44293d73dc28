// Package scout defines the domain types shared across the scout pipeline:
// campaigns as served by the campaign service, raw and normalized tweet
// candidates, seen-cache records, dead-letter records, and run summaries.
package scout

import (
	"time"
)

// CampaignStatus is the lifecycle state of a campaign. The scout only reads
// it; lifecycle transitions belong to the campaign service.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "DRAFT"
	StatusActive    CampaignStatus = "ACTIVE"
	StatusPaused    CampaignStatus = "PAUSED"
	StatusCompleted CampaignStatus = "COMPLETED"
)

// Campaign mirrors the campaign-service JSON shape. Channel-specific knobs
// (hashtags, thresholds, windows) live in the free-form Config map and are
// surfaced through typed accessors.
type Campaign struct {
	ID         int64          `json:"id"`
	ProductID  int64          `json:"productId"`
	Name       string         `json:"name"`
	Channel    string         `json:"channel"`
	Status     CampaignStatus `json:"status"`
	DailyLimit int            `json:"dailyLimit"`
	Config     map[string]any `json:"config"`
}

// Hashtags returns the configured hashtag list, empty if none.
func (c Campaign) Hashtags() []string {
	return configStrings(c.Config, "hashtags")
}

// Keywords returns the configured keyword list, empty if none.
func (c Campaign) Keywords() []string {
	return configStrings(c.Config, "keywords")
}

// MinFollowerCount returns the campaign's influence threshold, if configured.
// The legacy "minFollowers" key is honored when the channel-specific key is
// absent.
func (c Campaign) MinFollowerCount() (int64, bool) {
	if n, ok := configInt64(c.Config, "minFollowerCount"); ok {
		return n, ok
	}
	return configInt64(c.Config, "minFollowers")
}

// RecentWindowMinutes returns the campaign's recency window, if configured.
func (c Campaign) RecentWindowMinutes() (int, bool) {
	n, ok := configInt64(c.Config, "recentWindowMinutes")
	return int(n), ok
}

// MaxTweetsPerScan returns the campaign's per-scan candidate cap, if
// configured.
func (c Campaign) MaxTweetsPerScan() (int, bool) {
	n, ok := configInt64(c.Config, "maxTweetsPerScan")
	return int(n), ok
}

// SearchModeName returns the configured search mode string ("TOP", "LATEST",
// "PHOTOS", "VIDEOS"), empty if none.
func (c Campaign) SearchModeName() string {
	if c.Config == nil {
		return ""
	}
	if v, ok := c.Config["searchMode"].(string); ok {
		return v
	}
	return ""
}

// RawCandidate is a tweet as returned by discovery search, before influence
// lookup and normalization.
type RawCandidate struct {
	TweetID   string    `json:"tweetId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	Replies   int       `json:"replies"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile holds the author attributes fetched by the influence lookup.
type Profile struct {
	Followers int64 `json:"followers"`
	Verified  bool  `json:"verified"`
}

// Candidate is a normalized, filter-surviving tweet ready for publish. It is
// the payload written to the new-tweets topic, keyed by TweetID.
type Candidate struct {
	TweetID    string    `json:"tweetId"`
	CampaignID int64     `json:"campaignId"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
	Likes      int       `json:"likes"`
	Retweets   int       `json:"retweets"`
	Replies    int       `json:"replies"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"createdAt"`
	Followers  int64     `json:"followers"`
	Verified   bool      `json:"verified"`
}

// SeenRecord is the value stored in the seen cache per tweet ID.
type SeenRecord struct {
	CampaignID int64     `json:"campaignId"`
	FirstSeen  time.Time `json:"firstSeen"`
}

// DeadLetterRecord carries an entire failed publish batch to the dead-letter
// topic. One record per failed batch, never per tweet.
type DeadLetterRecord struct {
	CampaignID int64       `json:"campaignId"`
	Tweets     []Candidate `json:"tweets"`
	Error      string      `json:"error"`
	Timestamp  time.Time   `json:"timestamp"`
	Service    string      `json:"service"`
}

// RunSummary aggregates the outcome of one full scout run.
type RunSummary struct {
	CampaignsProcessed int
	CampaignsFailed    int
	TotalFound         int
	TotalPublished     int
	StartedAt          time.Time
	Duration           time.Duration
}

// configStrings reads a []string out of a decoded JSON config map, tolerating
// the []any shape produced by encoding/json.
func configStrings(cfg map[string]any, key string) []string {
	if cfg == nil {
		return nil
	}
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// configInt64 reads an integer out of a decoded JSON config map. JSON numbers
// decode as float64, but int and int64 are accepted for values built in code.
func configInt64(cfg map[string]any, key string) (int64, bool) {
	if cfg == nil {
		return 0, false
	}
	switch v := cfg[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
