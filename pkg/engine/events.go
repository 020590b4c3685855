package engine

import (
	"context"
	"time"

	"github.com/equitix/exchange-core/pkg/matching"
)

// Event is anything the engine announces on the outbound stream.
type Event interface {
	EventType() string
}

// TradeInfo is the outbound projection of a match; order references are
// flattened to IDs so events stay serializable.
type TradeInfo struct {
	SecurityID  string `json:"security_id"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	BuyOrderID  int64  `json:"buy_order_id"`
	SellOrderID int64  `json:"sell_order_id"`
}

type OrderAcceptedEvent struct {
	RequestID  int64  `json:"request_id"`
	SecurityID string `json:"security_id"`
	OrderID    int64  `json:"order_id"`
}

func (OrderAcceptedEvent) EventType() string { return "ORDER_ACCEPTED" }

type OrderUpdatedEvent struct {
	RequestID  int64  `json:"request_id"`
	SecurityID string `json:"security_id"`
	OrderID    int64  `json:"order_id"`
}

func (OrderUpdatedEvent) EventType() string { return "ORDER_UPDATED" }

type OrderDeletedEvent struct {
	RequestID  int64  `json:"request_id"`
	SecurityID string `json:"security_id"`
	OrderID    int64  `json:"order_id"`
}

func (OrderDeletedEvent) EventType() string { return "ORDER_DELETED" }

type OrderRejectedEvent struct {
	RequestID  int64    `json:"request_id"`
	SecurityID string   `json:"security_id"`
	OrderID    int64    `json:"order_id"`
	Reasons    []string `json:"reasons"`
}

func (OrderRejectedEvent) EventType() string { return "ORDER_REJECTED" }

type OrderExecutedEvent struct {
	RequestID  int64       `json:"request_id"`
	SecurityID string      `json:"security_id"`
	OrderID    int64       `json:"order_id"`
	Trades     []TradeInfo `json:"trades"`
}

func (OrderExecutedEvent) EventType() string { return "ORDER_EXECUTED" }

type OrderActivatedEvent struct {
	RequestID  int64  `json:"request_id"`
	SecurityID string `json:"security_id"`
	OrderID    int64  `json:"order_id"`
}

func (OrderActivatedEvent) EventType() string { return "ORDER_ACTIVATED" }

// TradeEvent is emitted once per auction execution; continuous executions
// ride on OrderExecutedEvent instead.
type TradeEvent struct {
	SecurityID  string `json:"security_id"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	BuyOrderID  int64  `json:"buy_order_id"`
	SellOrderID int64  `json:"sell_order_id"`
}

func (TradeEvent) EventType() string { return "TRADE" }

type OpeningPriceEvent struct {
	SecurityID       string `json:"security_id"`
	OpeningPrice     int64  `json:"opening_price"`
	TradableQuantity int64  `json:"tradable_quantity"`
}

func (OpeningPriceEvent) EventType() string { return "OPENING_PRICE" }

type SecurityStateChangedEvent struct {
	SecurityID string                 `json:"security_id"`
	State      matching.MatchingState `json:"state"`
	ChangedAt  time.Time              `json:"changed_at"`
}

func (SecurityStateChangedEvent) EventType() string { return "SECURITY_STATE_CHANGED" }

// EventPublisher delivers engine events to the outside world. Implementations
// must preserve per-security ordering.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventSecurityID extracts the partition key shared by all events of one
// book.
func EventSecurityID(event Event) string {
	switch ev := event.(type) {
	case OrderAcceptedEvent:
		return ev.SecurityID
	case OrderUpdatedEvent:
		return ev.SecurityID
	case OrderDeletedEvent:
		return ev.SecurityID
	case OrderRejectedEvent:
		return ev.SecurityID
	case OrderExecutedEvent:
		return ev.SecurityID
	case OrderActivatedEvent:
		return ev.SecurityID
	case TradeEvent:
		return ev.SecurityID
	case OpeningPriceEvent:
		return ev.SecurityID
	case SecurityStateChangedEvent:
		return ev.SecurityID
	default:
		return ""
	}
}

func tradeInfos(trades []*matching.Trade) []TradeInfo {
	if len(trades) == 0 {
		return nil
	}
	out := make([]TradeInfo, 0, len(trades))
	for _, trade := range trades {
		out = append(out, TradeInfo{
			SecurityID:  trade.SecurityID,
			Price:       trade.Price,
			Quantity:    trade.Quantity,
			BuyOrderID:  trade.Buy.OrderID,
			SellOrderID: trade.Sell.OrderID,
		})
	}
	return out
}
