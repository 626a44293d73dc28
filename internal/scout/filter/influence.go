package filter

import (
	"context"
	"log/slog"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
)

// LookupFunc fetches an author's profile. Implemented by the discovery
// adapter; a failure applies to that single author only.
type LookupFunc func(ctx context.Context, author string) (scout.Profile, error)

// Influence performs the author lookup for recency-surviving candidates and
// keeps those at or above the campaign's follower threshold. Survivors are
// normalized into publishable Candidates.
type Influence struct {
	lookup        LookupFunc
	globalDefault int64
	logger        *slog.Logger
}

// NewInfluence creates the influence stage with the service-wide default
// threshold used when a campaign configures none.
func NewInfluence(lookup LookupFunc, globalDefault int64) *Influence {
	return &Influence{
		lookup:        lookup,
		globalDefault: globalDefault,
		logger:        slog.Default().With("component", "influence-filter"),
	}
}

// Threshold resolves the follower threshold for a campaign: the channel
// config value wins, then the campaign-level legacy value, then the global
// default.
func (f *Influence) Threshold(campaign scout.Campaign) int64 {
	if n, ok := campaign.MinFollowerCount(); ok {
		return n
	}
	return f.globalDefault
}

// Apply looks up each author sequentially and returns the candidates whose
// follower count meets the threshold (inclusive), plus the number dropped
// because their lookup failed. Lookups are one at a time to bound load on
// the shared discovery session.
func (f *Influence) Apply(ctx context.Context, campaign scout.Campaign, raws []scout.RawCandidate) (kept []scout.Candidate, lookupFailed int) {
	threshold := f.Threshold(campaign)
	kept = make([]scout.Candidate, 0, len(raws))
	for _, raw := range raws {
		profile, err := f.lookup(ctx, raw.Author)
		if err != nil {
			lookupFailed++
			f.logger.Warn("dropping candidate, influence lookup failed",
				"tweet_id", raw.TweetID,
				"author", raw.Author,
				"error", err,
			)
			continue
		}
		if profile.Followers < threshold {
			f.logger.Debug("dropping candidate below threshold",
				"tweet_id", raw.TweetID,
				"author", raw.Author,
				"followers", profile.Followers,
				"threshold", threshold,
			)
			continue
		}
		kept = append(kept, normalize(campaign.ID, raw, profile))
	}
	return kept, lookupFailed
}

// normalize produces the publishable Candidate record from a raw search hit
// and its author profile.
func normalize(campaignID int64, raw scout.RawCandidate, profile scout.Profile) scout.Candidate {
	return scout.Candidate{
		TweetID:    raw.TweetID,
		CampaignID: campaignID,
		Author:     raw.Author,
		Text:       raw.Text,
		URL:        raw.URL,
		Likes:      raw.Likes,
		Retweets:   raw.Retweets,
		Replies:    raw.Replies,
		Language:   raw.Language,
		CreatedAt:  raw.CreatedAt,
		Followers:  profile.Followers,
		Verified:   profile.Verified,
	}
}
