package service

import (
	"context"

	"github.com/iliyamo/skillswap/internal/queue"
)

// EventPublisher delivers swap events to whoever listens. Implementations
// must be safe for concurrent use.
type EventPublisher interface {
	PublishSwapEvent(ctx context.Context, ev queue.SwapEvent) error
}

// NopPublisher drops every event. It is used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishSwapEvent(context.Context, queue.SwapEvent) error { return nil }
