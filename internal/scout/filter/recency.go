// Package filter holds the ordered candidate filtering stages: recency first,
// influence second. Recency is applied before the (expensive) influence
// lookup so stale candidates never cost a profile fetch.
package filter

import (
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
)

// Recent keeps the raw candidates created at or after now minus window. The
// cutoff is inclusive: a candidate exactly window old survives.
func Recent(raws []scout.RawCandidate, window time.Duration, now time.Time) []scout.RawCandidate {
	cutoff := now.Add(-window)
	kept := make([]scout.RawCandidate, 0, len(raws))
	for _, raw := range raws {
		if !raw.CreatedAt.Before(cutoff) {
			kept = append(kept, raw)
		}
	}
	return kept
}
