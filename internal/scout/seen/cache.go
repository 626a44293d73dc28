// Package seen is the shared dedup cache client. A live record for a tweet ID
// means no campaign may republish that tweet within the TTL window. The cache
// fails open: losing a genuinely new candidate is worse than publishing a
// duplicate, which downstream consumers already tolerate.
package seen

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
)

const keyPrefix = "tweet:seen:"

// Store is the batched key-value surface the cache needs. Implemented by
// pkg/redis via pipelining.
type Store interface {
	ExistsBatch(ctx context.Context, keys []string) ([]bool, error)
	SetBatch(ctx context.Context, keys []string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Cache filters out recently published tweets and records new ones.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache with the given record TTL (24h in production).
func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "seen-cache"),
	}
}

// FilterUnseen returns the candidates with no live seen record, checked in
// one pipelined round trip. On any store error it returns the input
// unchanged together with ErrCacheUnavailable so the caller can count the
// fail-open without losing candidates.
func (c *Cache) FilterUnseen(ctx context.Context, candidates []scout.Candidate) ([]scout.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	keys := make([]string, len(candidates))
	for i, candidate := range candidates {
		keys[i] = keyPrefix + candidate.TweetID
	}
	exists, err := c.store.ExistsBatch(ctx, keys)
	if err != nil {
		c.logger.Error("seen check failed, passing all candidates through", "count", len(candidates), "error", err)
		return candidates, apperrors.Newf(apperrors.ErrCacheUnavailable, "exists batch: %v", err)
	}
	unseen := make([]scout.Candidate, 0, len(candidates))
	for i, candidate := range candidates {
		if !exists[i] {
			unseen = append(unseen, candidate)
		}
	}
	if seenCount := len(candidates) - len(unseen); seenCount > 0 {
		c.logger.Info("filtered already-seen tweets", "seen", seenCount, "unseen", len(unseen))
	}
	return unseen, nil
}

// MarkSeen records each candidate with the cache TTL in one pipelined round
// trip and returns the number written. Failures are logged, not fatal: an
// unmarked candidate may be republished next run, which is acceptable under
// at-least-once delivery.
func (c *Cache) MarkSeen(ctx context.Context, candidates []scout.Candidate, campaignID int64) int {
	if len(candidates) == 0 {
		return 0
	}
	record, err := json.Marshal(scout.SeenRecord{
		CampaignID: campaignID,
		FirstSeen:  time.Now().UTC(),
	})
	if err != nil {
		c.logger.Error("marshaling seen record", "campaign_id", campaignID, "error", err)
		return 0
	}
	keys := make([]string, len(candidates))
	for i, candidate := range candidates {
		keys[i] = keyPrefix + candidate.TweetID
	}
	if err := c.store.SetBatch(ctx, keys, record, c.ttl); err != nil {
		c.logger.Warn("failed to mark tweets as seen", "count", len(keys), "campaign_id", campaignID, "error", err)
		return 0
	}
	c.logger.Info("marked tweets as seen", "count", len(keys), "campaign_id", campaignID, "ttl", c.ttl)
	return len(keys)
}

// Clear deletes every seen record. Maintenance only, behind the -flush-seen
// flag.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	return c.store.FlushByPattern(ctx, keyPrefix+"*")
}
