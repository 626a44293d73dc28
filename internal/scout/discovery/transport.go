// Package discovery wraps the external content-discovery capability: session
// acquisition and reuse, raw tweet search, and per-author profile lookup.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
)

// Credentials are the discovery login credentials. Email is optional and only
// sent when the login flow challenges for it.
type Credentials struct {
	Username string
	Password string
	Email    string
}

// Transport is the wire-level capability behind the adapter. Two variants
// exist: the standard scraper gateway and the enhanced anti-bot fetch
// service. Both expose the same contract, so the rest of the pipeline never
// sees which one is in use.
type Transport interface {
	Login(ctx context.Context, creds Credentials) (token string, err error)
	Search(ctx context.Context, token, query string, limit int, mode scout.SearchMode) ([]scout.RawCandidate, error)
	Profile(ctx context.Context, token, author string) (scout.Profile, error)
}

// NewTransport selects the transport variant at construction time. When the
// enhanced endpoint is not configured the adapter degrades to the standard
// transport without affecting any other component's contract.
func NewTransport(cfg config.DiscoveryConfig) Transport {
	if cfg.EnhancedURL != "" {
		return &httpTransport{
			baseURL:  cfg.EnhancedURL,
			enhanced: true,
			client:   &http.Client{Timeout: 30 * time.Second},
		}
	}
	return &httpTransport{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// httpTransport talks to a scraper gateway over HTTP. The enhanced flag
// routes requests through the gateway's stealth fetch path, which rotates
// browser fingerprints server-side.
type httpTransport struct {
	baseURL  string
	enhanced bool
	client   *http.Client
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type searchResponse struct {
	Tweets []scout.RawCandidate `json:"tweets"`
}

func (t *httpTransport) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := json.Marshal(loginRequest{
		Username: creds.Username,
		Password: creds.Password,
		Email:    creds.Email,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	t.decorate(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}
	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if lr.Token == "" {
		return "", fmt.Errorf("login response missing token")
	}
	return lr.Token, nil
}

func (t *httpTransport) Search(ctx context.Context, token, query string, limit int, mode scout.SearchMode) ([]scout.RawCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("mode", strconv.Itoa(int(mode)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	t.authorize(req, token)
	t.decorate(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return nil, errSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return sr.Tweets, nil
}

func (t *httpTransport) Profile(ctx context.Context, token, author string) (scout.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/profile/"+url.PathEscape(author), nil)
	if err != nil {
		return scout.Profile{}, fmt.Errorf("building profile request: %w", err)
	}
	t.authorize(req, token)
	t.decorate(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return scout.Profile{}, fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return scout.Profile{}, errSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return scout.Profile{}, fmt.Errorf("profile lookup for %s returned status %d", author, resp.StatusCode)
	}
	var profile scout.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return scout.Profile{}, fmt.Errorf("decoding profile response: %w", err)
	}
	return profile, nil
}

func (t *httpTransport) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

func (t *httpTransport) decorate(req *http.Request) {
	if t.enhanced {
		req.Header.Set("X-Fetch-Mode", "stealth")
	}
}
