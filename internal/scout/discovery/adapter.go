package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/config"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
	"github.com/harunalpak/agentic-traffic-booster/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

// errSessionExpired marks a 401 on an established session.
var errSessionExpired = errors.New("discovery session expired")

// Session is the authenticated handle against the discovery capability. It
// is created lazily, shared read-only across campaigns within a run, and
// invalidated only on authentication failure.
type Session struct {
	Token      string
	AcquiredAt time.Time
}

// Adapter owns the shared discovery session and exposes the three
// capability operations the pipeline needs: Authenticate, Search, and
// LookupInfluence.
type Adapter struct {
	transport Transport
	creds     Credentials

	lookupTimeout time.Duration
	breaker       *resilience.CircuitBreaker
	group         singleflight.Group

	mu      sync.Mutex
	session *Session

	logger *slog.Logger
}

// NewAdapter builds an Adapter from configuration, selecting the transport
// variant and sizing the lookup timeout.
func NewAdapter(cfg config.DiscoveryConfig) *Adapter {
	return New(NewTransport(cfg), Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Email:    cfg.Email,
	}, cfg.LookupTimeout)
}

// New creates an Adapter over an explicit transport, used directly by tests.
func New(transport Transport, creds Credentials, lookupTimeout time.Duration) *Adapter {
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	return &Adapter{
		transport:     transport,
		creds:         creds,
		lookupTimeout: lookupTimeout,
		breaker:       resilience.NewCircuitBreaker("influence-lookup", resilience.CircuitBreakerConfig{}),
		logger:        slog.Default().With("component", "discovery"),
	}
}

// Authenticate returns the cached session, logging in on first use.
// Concurrent callers share a single login via singleflight. A failed login
// leaves no cached session and yields ErrDiscoveryAuth.
func (a *Adapter) Authenticate(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	if a.session != nil {
		session := a.session
		a.mu.Unlock()
		return session, nil
	}
	a.mu.Unlock()

	val, err, _ := a.group.Do("login", func() (any, error) {
		a.mu.Lock()
		if a.session != nil {
			session := a.session
			a.mu.Unlock()
			return session, nil
		}
		a.mu.Unlock()

		token, err := a.transport.Login(ctx, a.creds)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrDiscoveryAuth, "login as %s: %v", a.creds.Username, err)
		}
		session := &Session{Token: token, AcquiredAt: time.Now().UTC()}
		a.mu.Lock()
		a.session = session
		a.mu.Unlock()
		a.logger.Info("discovery session established", "username", a.creds.Username)
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Session), nil
}

// Invalidate discards the cached session so the next Authenticate performs a
// fresh login. Called on authentication failure only.
func (a *Adapter) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.logger.Warn("discovery session invalidated")
		a.session = nil
	}
}

// Search runs a raw tweet search bounded by limit. An expired session is
// surfaced as ErrDiscoveryAuth so the orchestrator invalidates and fails the
// run's remaining discovery work.
func (a *Adapter) Search(ctx context.Context, session *Session, query string, limit int, mode scout.SearchMode) ([]scout.RawCandidate, error) {
	raws, err := a.transport.Search(ctx, session.Token, query, limit, mode)
	if err != nil {
		if errors.Is(err, errSessionExpired) {
			return nil, apperrors.Newf(apperrors.ErrDiscoveryAuth, "search: %v", err)
		}
		return nil, err
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	a.logger.Debug("search completed", "query", query, "mode", mode.String(), "found", len(raws))
	return raws, nil
}

// LookupInfluence fetches the author's profile with a bounded timeout and a
// circuit breaker. Failures here are isolated to the single candidate; the
// caller drops it and continues.
func (a *Adapter) LookupInfluence(ctx context.Context, session *Session, author string) (scout.Profile, error) {
	var profile scout.Profile
	err := a.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, a.lookupTimeout, "influence-lookup", func(ctx context.Context) error {
			var lookupErr error
			profile, lookupErr = a.transport.Profile(ctx, session.Token, author)
			return lookupErr
		})
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return scout.Profile{}, apperrors.Newf(apperrors.ErrLookupTimeout, "author %s after %v", author, a.lookupTimeout)
		}
		return scout.Profile{}, err
	}
	return profile, nil
}

// BreakerState exposes the lookup circuit state for the metrics gauge.
func (a *Adapter) BreakerState() resilience.State {
	return a.breaker.GetState()
}
