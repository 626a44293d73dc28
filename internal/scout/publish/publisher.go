// Package publish sends filtered candidates to the new-tweets topic with a
// dead-letter fallback. A campaign's batch is all-or-nothing: either every
// candidate is confirmed published or the whole batch goes to dead-letter.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/internal/scout"
	"github.com/harunalpak/agentic-traffic-booster/pkg/kafka"
)

// serviceTag identifies this service as the origin of dead-letter records.
const serviceTag = "tweet-scout-service"

// Producer is the broker surface the publisher needs. Implemented by
// pkg/kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Publisher writes candidate batches to the primary topic and failed batches
// to the dead-letter topic.
type Publisher struct {
	primary    Producer
	deadLetter Producer
	logger     *slog.Logger
}

// New creates a Publisher over the two topic producers.
func New(primary, deadLetter Producer) *Publisher {
	return &Publisher{
		primary:    primary,
		deadLetter: deadLetter,
		logger:     slog.Default().With("component", "tweet-publisher"),
	}
}

// Publish sends all candidates for a campaign in one batch, keyed by tweet
// ID, and returns the number published. On failure it makes exactly one
// attempt to write a single dead-letter record carrying the entire batch and
// the causing error; if that also fails it logs and returns 0. A non-zero
// return means the full batch was confirmed by the broker.
func (p *Publisher) Publish(ctx context.Context, campaignID int64, candidates []scout.Candidate) int {
	if len(candidates) == 0 {
		return 0
	}
	now := time.Now().UTC()
	events := make([]kafka.Event, 0, len(candidates))
	for _, candidate := range candidates {
		events = append(events, kafka.Event{
			Key:   candidate.TweetID,
			Value: candidate,
			Time:  now,
		})
	}

	if err := p.primary.PublishBatch(ctx, events); err != nil {
		p.logger.Error("failed to publish tweets",
			"campaign_id", campaignID,
			"count", len(candidates),
			"error", err,
		)
		p.sendToDeadLetter(ctx, campaignID, candidates, err)
		return 0
	}

	p.logger.Info("published tweets",
		"campaign_id", campaignID,
		"count", len(candidates),
	)
	return len(candidates)
}

// sendToDeadLetter writes one record containing the whole failed batch.
func (p *Publisher) sendToDeadLetter(ctx context.Context, campaignID int64, candidates []scout.Candidate, cause error) {
	now := time.Now().UTC()
	event := kafka.Event{
		Key: fmt.Sprintf("failed_%d_%d", campaignID, now.UnixMilli()),
		Value: scout.DeadLetterRecord{
			CampaignID: campaignID,
			Tweets:     candidates,
			Error:      cause.Error(),
			Timestamp:  now,
			Service:    serviceTag,
		},
		Time: now,
	}
	if err := p.deadLetter.Publish(ctx, event); err != nil {
		p.logger.Error("failed to send batch to dead letter queue",
			"campaign_id", campaignID,
			"count", len(candidates),
			"error", err,
		)
		return
	}
	p.logger.Info("sent failed batch to dead letter queue",
		"campaign_id", campaignID,
		"count", len(candidates),
	)
}
