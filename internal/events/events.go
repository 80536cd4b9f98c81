// Package events publishes domain events for downstream consumers, most
// importantly the search read side. Publishing is best effort: callers
// log failures and never fail the write that produced the event.
package events

import (
	"context"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
)

type Publisher interface {
	PublishPromptCreated(ctx context.Context, ev domain.PromptCreatedEvent) error
}

// NopPublisher drops events. Used when no topic is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPromptCreated(_ context.Context, ev domain.PromptCreatedEvent) error {
	logger.Debug("Event publishing disabled, dropping event", "prompt_id", ev.PromptID)
	return nil
}
