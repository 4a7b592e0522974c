package events

import (
	"context"

	"github.com/agentmart/relay-service/internal/domain"
)

// ActivityProducer feeds persisted chat messages to the marketplace's
// seller-analytics pipeline. Delivery is best-effort; the relay never
// blocks a send on it.
type ActivityProducer interface {
	ProduceMessage(ctx context.Context, msg *domain.ChatMessage) error
	Close() error
}
