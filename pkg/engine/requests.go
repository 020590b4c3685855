package engine

import (
	"time"

	"github.com/equitix/exchange-core/pkg/matching"
)

type RequestType string

const (
	RequestTypeNew    RequestType = "NEW_ORDER"
	RequestTypeUpdate RequestType = "UPDATE_ORDER"
)

// EnterOrderRequest carries both new orders and updates; Type tells them
// apart. Quantities and prices are integral, scaled upstream.
type EnterOrderRequest struct {
	RequestID                int64         `json:"request_id"`
	Type                     RequestType   `json:"type"`
	SecurityID               string        `json:"security_id"`
	OrderID                  int64         `json:"order_id"`
	Side                     matching.Side `json:"side"`
	Quantity                 int64         `json:"quantity"`
	Price                    int64         `json:"price"`
	BrokerID                 int64         `json:"broker_id"`
	ShareholderID            int64         `json:"shareholder_id"`
	PeakSize                 int64         `json:"peak_size,omitempty"`
	StopPrice                int64         `json:"stop_price,omitempty"`
	MinimumExecutionQuantity int64         `json:"minimum_execution_quantity,omitempty"`
	EntryTime                time.Time     `json:"entry_time"`
}

type DeleteOrderRequest struct {
	RequestID  int64         `json:"request_id"`
	SecurityID string        `json:"security_id"`
	Side       matching.Side `json:"side"`
	OrderID    int64         `json:"order_id"`
}

type ChangeMatchingStateRequest struct {
	RequestID   int64                  `json:"request_id"`
	SecurityID  string                 `json:"security_id"`
	TargetState matching.MatchingState `json:"target_state"`
}
