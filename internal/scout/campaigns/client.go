// Package campaigns is the HTTP client for the campaign service. The scout
// only reads campaigns; CRUD and lifecycle belong to the campaign service.
package campaigns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
	"github.com/harunalpak/agentic-traffic-booster/pkg/resilience"
)

// Client fetches campaigns from the campaign service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a campaign service client.
func New(cfg config.CampaignsConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  slog.Default().With("component", "campaign-client"),
	}
}

// Active returns all ACTIVE campaigns. The status filter is passed upstream
// and re-applied locally because the campaign service has been observed to
// return non-active rows. An unreachable service yields
// ErrUpstreamUnavailable; callers fail soft on it.
func (c *Client) Active(ctx context.Context) ([]scout.Campaign, error) {
	endpoint := fmt.Sprintf("%s/api/campaigns?status=%s", c.baseURL, url.QueryEscape(string(scout.StatusActive)))

	var all []scout.Campaign
	err := resilience.Retry(ctx, "fetch-active-campaigns", resilience.RetryConfig{MaxAttempts: 2}, func() error {
		var fetchErr error
		all, fetchErr = c.fetch(ctx, endpoint)
		return fetchErr
	})
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrUpstreamUnavailable, "campaign service at %s: %v", c.baseURL, err)
	}

	active := make([]scout.Campaign, 0, len(all))
	for _, campaign := range all {
		if campaign.Status == scout.StatusActive {
			active = append(active, campaign)
		}
	}
	c.logger.Info("retrieved active campaigns", "active", len(active), "total", len(all))
	return active, nil
}

// GetByID returns a single campaign, used by the single-campaign debug run.
func (c *Client) GetByID(ctx context.Context, id int64) (*scout.Campaign, error) {
	endpoint := fmt.Sprintf("%s/api/campaigns/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building campaign request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrUpstreamUnavailable, "campaign service at %s: %v", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("campaign %d: unexpected status %d", id, resp.StatusCode)
	}
	var campaign scout.Campaign
	if err := json.NewDecoder(resp.Body).Decode(&campaign); err != nil {
		return nil, fmt.Errorf("decoding campaign %d: %w", id, err)
	}
	return &campaign, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]scout.Campaign, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building campaigns request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("campaign service returned status %d", resp.StatusCode)
	}
	var campaigns []scout.Campaign
	if err := json.NewDecoder(resp.Body).Decode(&campaigns); err != nil {
		return nil, fmt.Errorf("decoding campaigns: %w", err)
	}
	return campaigns, nil
}
