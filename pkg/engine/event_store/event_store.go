package eventstore

import "github.com/equitix/exchange-core/pkg/engine/model"

// EventStore journals order lifecycle events so that a client can ask what
// happened to an order without touching the live book.
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	GetEvents(securityID string, orderID int64) []*model.OrderEvent
	GetLatestRequestID(securityID string, orderID int64) int64
}
