package audit

import (
	"context"
	"encoding/json"
	"strings"

	"storefront-identity/internal/logger"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type messagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher publishes events as JSON to <topic>/<event type>. Publish
// failures are logged and never reach the caller.
type MQTTPublisher struct {
	client messagePublisher
	topic  string
	qos    byte
}

func NewMQTTPublisher(client messagePublisher, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topic:  strings.TrimRight(topic, "/"),
		qos:    qos,
	}
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode audit event", zap.Error(err))
		return
	}

	topic := p.topic + "/" + string(event.Type)
	if err := p.client.Publish(topic, p.qos, false, payload); err != nil {
		logger.Warn("Failed to publish audit event",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

// LogPublisher writes events to the structured log.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event Event) {
	logger.Info("Audit event",
		logger.Event(string(event.Type)),
		zap.String("account_id", event.AccountID),
		zap.String("reason", event.Reason),
	)
}
