package eventbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
)

// NATSPublisherConfig builds the watermill publisher settings for url.
// Events go out as core NATS messages on a subject named after the topic,
// with the watermill uuid and metadata carried in headers.
func NATSPublisherConfig(url string, logger *slog.Logger) wmnats.PublisherConfig {
	return wmnats.PublisherConfig{
		URL: url,
		NatsOptions: []nc.Option{
			nc.Name("partie"),
			nc.RetryOnFailedConnect(true),
			nc.MaxReconnects(-1),
			nc.ReconnectWait(2 * time.Second),
			nc.DisconnectErrHandler(func(_ *nc.Conn, err error) {
				if err != nil {
					logger.Warn("Disconnected from NATS", attr.Error(err))
				}
			}),
		},
		Marshaler:         &wmnats.NATSMarshaler{},
		SubjectCalculator: wmnats.DefaultSubjectCalculator,
		JetStream:         wmnats.JetStreamConfig{Disabled: true},
	}
}

// ConnectNATS dials url and returns a publisher owning the connection.
func ConnectNATS(url string, logger *slog.Logger) (message.Publisher, error) {
	publisher, err := wmnats.NewPublisher(NATSPublisherConfig(url, logger), watermill.NewSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create NATS publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return publisher, nil
}
