// Package query builds discovery search queries from campaign configuration.
package query

import (
	"strings"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	apperrors "github.com/harunalpak/agentic-traffic-booster/pkg/errors"
)

// Build joins the campaign's configured hashtags with OR for a broad search.
// A campaign without hashtags is not searchable and yields ErrNoQuery; there
// is no fallback to keywords or the campaign name.
func Build(campaign scout.Campaign) (string, error) {
	parts := make([]string, 0)
	for _, tag := range campaign.Hashtags() {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			parts = append(parts, tag)
		}
	}
	if len(parts) == 0 {
		return "", apperrors.Newf(apperrors.ErrNoQuery, "campaign %d has no hashtags configured", campaign.ID)
	}
	return strings.Join(parts, " OR "), nil
}
