package eventbus

import (
	"context"
	"encoding/json"

	"github.com/equitix/exchange-core/pkg/engine"
)

// Envelope wraps an engine event with its type so consumers can decode the
// payload without trying every shape.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EnginePublisher adapts the Kafka producer to the engine's publisher
// interface. Events are keyed by security so one book maps to one partition.
type EnginePublisher struct {
	producer *Producer
	topic    string
}

func NewEnginePublisher(producer *Producer, topic string) *EnginePublisher {
	return &EnginePublisher{producer: producer, topic: topic}
}

func (p *EnginePublisher) Publish(ctx context.Context, event engine.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Envelope{Type: event.EventType(), Payload: payload})
	if err != nil {
		return err
	}
	key := HashKey(engine.EventSecurityID(event))
	return p.producer.Publish(ctx, p.topic, key, body, map[string]string{
		"event_type": event.EventType(),
	})
}
