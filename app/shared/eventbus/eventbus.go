// Package eventbus publishes domain events on a watermill publisher. The
// in-process GoChannel backs tests and single-node deployments; NATS backs
// the rest.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
)

// Publisher is the narrow surface services depend on.
type Publisher interface {
	PublishJSON(ctx context.Context, topic string, payload any) error
}

// Bus serialises payloads to JSON and hands them to a watermill publisher.
type Bus struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func New(publisher message.Publisher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{publisher: publisher, logger: logger}
}

// NewGoChannel returns an in-memory pub/sub logging through logger.
func NewGoChannel(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
}

// NewMessage builds a watermill message carrying the request correlation id.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if id := attr.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	msg.Metadata.Set("content_type", "application/json")
	return msg, nil
}

func (b *Bus) PublishJSON(ctx context.Context, topic string, payload any) error {
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	msg.Metadata.Set("topic", topic)

	if err := b.publisher.Publish(topic, msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	b.logger.DebugContext(ctx, "Event published",
		attr.ExtractCorrelationID(ctx),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}

func (b *Bus) Close() error {
	return b.publisher.Close()
}

// Discard drops every event. Used when no bus is configured.
type Discard struct{}

func (Discard) PublishJSON(context.Context, string, any) error { return nil }
