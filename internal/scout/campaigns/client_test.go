package campaigns

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
)

func testClient(baseURL string) *Client {
	return New(config.CampaignsConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
}

func TestActiveReFiltersByStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/campaigns" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "ACTIVE" {
			t.Errorf("expected status=ACTIVE query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "name": "Summer Sale", "status": "ACTIVE", "config": {"hashtags": ["#sale"]}},
			{"id": 2, "name": "Old Push", "status": "PAUSED"},
			{"id": 3, "name": "Winter Drop", "status": "ACTIVE"}
		]`))
	}))
	defer server.Close()

	active, err := testClient(server.URL).Active(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active campaigns, got %d", len(active))
	}
	if active[0].ID != 1 || active[1].ID != 3 {
		t.Errorf("expected campaigns [1 3], got [%d %d]", active[0].ID, active[1].ID)
	}
	if tags := active[0].Hashtags(); len(tags) != 1 || tags[0] != "#sale" {
		t.Errorf("campaign config not decoded: %v", tags)
	}
}

func TestActiveUnreachableServiceIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := testClient(server.URL).Active(context.Background())
	if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestActiveServerErrorIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Active(context.Background())
	if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestActiveRetriesOnce(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1, "status": "ACTIVE"}]`))
	}))
	defer server.Close()

	active, err := testClient(server.URL).Active(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 campaign, got %d", len(active))
	}
}

func TestGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/campaigns/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "name": "Handmade Week", "status": "ACTIVE"}`))
	}))
	defer server.Close()

	campaign, err := testClient(server.URL).GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if campaign.ID != 42 || campaign.Name != "Handmade Week" {
		t.Errorf("unexpected campaign %+v", campaign)
	}
	if campaign.Status != scout.StatusActive {
		t.Errorf("unexpected status %s", campaign.Status)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).GetByID(context.Background(), 99); err == nil {
		t.Error("expected error for missing campaign")
	}
}
