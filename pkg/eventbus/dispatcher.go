package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/equitix/exchange-core/pkg/engine"
)

const (
	RequestNewOrder            = "NEW_ORDER"
	RequestUpdateOrder         = "UPDATE_ORDER"
	RequestDeleteOrder         = "DELETE_ORDER"
	RequestChangeMatchingState = "CHANGE_MATCHING_STATE"
)

// RequestEnvelope is the wire form of inbound requests on the request topic.
type RequestEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewRequestHandler decodes request messages and hands them to the engine.
// Unknown request types fail the message so it surfaces on the DLQ instead
// of disappearing.
func NewRequestHandler(e *engine.Engine) func(context.Context, Message) error {
	return func(ctx context.Context, m Message) error {
		var env RequestEnvelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			return fmt.Errorf("decode request envelope: %w", err)
		}

		switch env.Type {
		case RequestNewOrder, RequestUpdateOrder:
			var req engine.EnterOrderRequest
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				return fmt.Errorf("decode enter order request: %w", err)
			}
			if req.Type == "" {
				req.Type = engine.RequestType(env.Type)
			}
			return e.HandleEnterOrder(ctx, &req)
		case RequestDeleteOrder:
			var req engine.DeleteOrderRequest
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				return fmt.Errorf("decode delete order request: %w", err)
			}
			return e.HandleDeleteOrder(ctx, &req)
		case RequestChangeMatchingState:
			var req engine.ChangeMatchingStateRequest
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				return fmt.Errorf("decode change matching state request: %w", err)
			}
			return e.HandleChangeMatchingState(ctx, &req)
		default:
			return fmt.Errorf("unknown request type %q", env.Type)
		}
	}
}
