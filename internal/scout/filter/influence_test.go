package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
)

func lookupFromMap(profiles map[string]scout.Profile) LookupFunc {
	return func(ctx context.Context, author string) (scout.Profile, error) {
		profile, ok := profiles[author]
		if !ok {
			return scout.Profile{}, errors.New("unknown author")
		}
		return profile, nil
	}
}

func TestApplyThresholdIsInclusive(t *testing.T) {
	lookup := lookupFromMap(map[string]scout.Profile{
		"below": {Followers: 999},
		"exact": {Followers: 1000},
		"above": {Followers: 1500, Verified: true},
	})
	f := NewInfluence(lookup, 50)
	campaign := scout.Campaign{
		ID:     7,
		Config: map[string]any{"minFollowerCount": float64(1000)},
	}
	raws := []scout.RawCandidate{
		{TweetID: "t1", Author: "below"},
		{TweetID: "t2", Author: "exact"},
		{TweetID: "t3", Author: "above"},
	}

	kept, lookupFailed := f.Apply(context.Background(), campaign, raws)
	if lookupFailed != 0 {
		t.Errorf("expected 0 lookup failures, got %d", lookupFailed)
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].TweetID != "t2" || kept[1].TweetID != "t3" {
		t.Errorf("expected [t2 t3], got [%s %s]", kept[0].TweetID, kept[1].TweetID)
	}
}

func TestApplyNormalizesSurvivors(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)
	lookup := lookupFromMap(map[string]scout.Profile{
		"maker": {Followers: 200000, Verified: true},
	})
	f := NewInfluence(lookup, 1000)
	raw := scout.RawCandidate{
		TweetID:   "t9",
		Author:    "maker",
		Text:      "new drop #handmade",
		URL:       "https://twitter.com/maker/status/t9",
		Likes:     12,
		Retweets:  3,
		Replies:   1,
		Language:  "en",
		CreatedAt: createdAt,
	}

	kept, _ := f.Apply(context.Background(), scout.Campaign{ID: 42}, []scout.RawCandidate{raw})
	if len(kept) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(kept))
	}
	got := kept[0]
	if got.CampaignID != 42 {
		t.Errorf("expected campaignId 42, got %d", got.CampaignID)
	}
	if got.TweetID != "t9" || got.Author != "maker" || got.Text != "new drop #handmade" {
		t.Errorf("candidate fields not carried over: %+v", got)
	}
	if got.Followers != 200000 || !got.Verified {
		t.Errorf("profile fields not merged: followers=%d verified=%v", got.Followers, got.Verified)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("createdAt changed: %v", got.CreatedAt)
	}
}

func TestApplyLookupFailureIsIsolated(t *testing.T) {
	lookup := lookupFromMap(map[string]scout.Profile{
		"known": {Followers: 5000},
	})
	f := NewInfluence(lookup, 1000)
	raws := []scout.RawCandidate{
		{TweetID: "t1", Author: "ghost"},
		{TweetID: "t2", Author: "known"},
		{TweetID: "t3", Author: "phantom"},
	}

	kept, lookupFailed := f.Apply(context.Background(), scout.Campaign{ID: 1}, raws)
	if lookupFailed != 2 {
		t.Errorf("expected 2 lookup failures, got %d", lookupFailed)
	}
	if len(kept) != 1 || kept[0].TweetID != "t2" {
		t.Errorf("expected only t2 to survive, got %+v", kept)
	}
}

func TestThresholdResolutionOrder(t *testing.T) {
	f := NewInfluence(nil, 150000)

	cases := []struct {
		name     string
		config   map[string]any
		expected int64
	}{
		{"channel config wins", map[string]any{"minFollowerCount": float64(500), "minFollowers": float64(900)}, 500},
		{"legacy campaign value", map[string]any{"minFollowers": float64(900)}, 900},
		{"global default", nil, 150000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.Threshold(scout.Campaign{Config: tc.config})
			if got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}
