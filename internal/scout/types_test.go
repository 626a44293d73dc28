package scout

import (
	"encoding/json"
	"testing"
)

// decodedCampaign runs a JSON round through encoding/json so the config map
// carries the float64 and []any shapes seen in production.
func decodedCampaign(t *testing.T, raw string) Campaign {
	t.Helper()
	var c Campaign
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decoding campaign: %v", err)
	}
	return c
}

func TestCampaignConfigAccessors(t *testing.T) {
	c := decodedCampaign(t, `{
		"id": 7,
		"name": "Summer Sale",
		"status": "ACTIVE",
		"config": {
			"hashtags": ["#sale", "#deal"],
			"keywords": ["discount"],
			"minFollowerCount": 1000,
			"recentWindowMinutes": 60,
			"maxTweetsPerScan": 25,
			"searchMode": "TOP"
		}
	}`)

	if tags := c.Hashtags(); len(tags) != 2 || tags[0] != "#sale" || tags[1] != "#deal" {
		t.Errorf("unexpected hashtags %v", tags)
	}
	if kws := c.Keywords(); len(kws) != 1 || kws[0] != "discount" {
		t.Errorf("unexpected keywords %v", kws)
	}
	if n, ok := c.MinFollowerCount(); !ok || n != 1000 {
		t.Errorf("expected threshold 1000, got %d (ok=%v)", n, ok)
	}
	if n, ok := c.RecentWindowMinutes(); !ok || n != 60 {
		t.Errorf("expected window 60, got %d (ok=%v)", n, ok)
	}
	if n, ok := c.MaxTweetsPerScan(); !ok || n != 25 {
		t.Errorf("expected cap 25, got %d (ok=%v)", n, ok)
	}
	if mode := c.SearchModeName(); mode != "TOP" {
		t.Errorf("expected TOP, got %q", mode)
	}
}

func TestMinFollowerCountLegacyKey(t *testing.T) {
	c := decodedCampaign(t, `{"id": 1, "config": {"minFollowers": 900}}`)
	if n, ok := c.MinFollowerCount(); !ok || n != 900 {
		t.Errorf("expected legacy key honored with 900, got %d (ok=%v)", n, ok)
	}

	both := decodedCampaign(t, `{"id": 1, "config": {"minFollowerCount": 500, "minFollowers": 900}}`)
	if n, _ := both.MinFollowerCount(); n != 500 {
		t.Errorf("expected channel key to win, got %d", n)
	}
}

func TestAccessorsOnMissingConfig(t *testing.T) {
	c := Campaign{ID: 1, Name: "bare"}
	if tags := c.Hashtags(); len(tags) != 0 {
		t.Errorf("expected no hashtags, got %v", tags)
	}
	if _, ok := c.MinFollowerCount(); ok {
		t.Error("expected no threshold on nil config")
	}
	if mode := c.SearchModeName(); mode != "" {
		t.Errorf("expected empty mode, got %q", mode)
	}
}

func TestResolveSearchMode(t *testing.T) {
	cases := []struct {
		name     string
		expected SearchMode
	}{
		{"TOP", SearchTop},
		{"LATEST", SearchLatest},
		{"PHOTOS", SearchPhotos},
		{"VIDEOS", SearchVideos},
		{"latest", SearchLatest},
		{"Top", SearchTop},
		{"", SearchLatest},
		{"bogus", SearchLatest},
	}
	for _, tc := range cases {
		if got := ResolveSearchMode(tc.name); got != tc.expected {
			t.Errorf("ResolveSearchMode(%q) = %v, expected %v", tc.name, got, tc.expected)
		}
	}
}

func TestSearchModeWireValues(t *testing.T) {
	if SearchTop != 0 || SearchLatest != 1 || SearchPhotos != 2 || SearchVideos != 3 {
		t.Error("search mode wire values must stay stable")
	}
}
