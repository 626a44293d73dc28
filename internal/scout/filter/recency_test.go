package filter

import (
	"testing"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
)

func rawAt(id string, createdAt time.Time) scout.RawCandidate {
	return scout.RawCandidate{TweetID: id, Author: "user_" + id, CreatedAt: createdAt}
}

func TestRecentBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Minute

	raws := []scout.RawCandidate{
		rawAt("fresh", now.Add(-5*time.Minute)),
		rawAt("exact", now.Add(-60*time.Minute)),
		rawAt("stale", now.Add(-60*time.Minute-time.Second)),
	}

	kept := Recent(raws, window, now)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].TweetID != "fresh" || kept[1].TweetID != "exact" {
		t.Errorf("expected [fresh exact], got [%s %s]", kept[0].TweetID, kept[1].TweetID)
	}
}

func TestRecentKeepsFutureTimestamps(t *testing.T) {
	// Clock skew between the scraper and this host must not drop candidates.
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	kept := Recent([]scout.RawCandidate{rawAt("ahead", now.Add(2*time.Minute))}, time.Hour, now)
	if len(kept) != 1 {
		t.Errorf("expected future-dated candidate kept, got %d", len(kept))
	}
}

func TestRecentEmptyInput(t *testing.T) {
	if kept := Recent(nil, time.Hour, time.Now()); len(kept) != 0 {
		t.Errorf("expected empty result, got %d", len(kept))
	}
}

func TestRecentAllStale(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	raws := []scout.RawCandidate{
		rawAt("old1", now.Add(-4*time.Hour)),
		rawAt("old2", now.Add(-26*time.Hour)),
	}
	if kept := Recent(raws, 3*time.Hour, now); len(kept) != 0 {
		t.Errorf("expected no survivors, got %d", len(kept))
	}
}
