package model

import "time"

type EventKind string

const (
	EventKindAccepted  EventKind = "ACCEPTED"
	EventKindUpdated   EventKind = "UPDATED"
	EventKindDeleted   EventKind = "DELETED"
	EventKindRejected  EventKind = "REJECTED"
	EventKindExecuted  EventKind = "EXECUTED"
	EventKindActivated EventKind = "ACTIVATED"
)

// OrderEvent is one journal entry of the order lifecycle. The journal is the
// engine's audit trail; the in-memory book itself is not persisted.
type OrderEvent struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	RequestID  int64     `gorm:"column:request_id"`
	SecurityID string    `gorm:"column:security_id"`
	OrderID    int64     `gorm:"column:order_id"`
	Kind       EventKind `gorm:"column:kind"`
	Side       string    `gorm:"column:side"`
	Quantity   int64     `gorm:"column:quantity"`
	Price      int64     `gorm:"column:price"`
	Reason     string    `gorm:"column:reason"`
	Timestamp  time.Time `gorm:"column:timestamp"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}

func NewOrderEvent(requestID int64, securityID string, orderID int64, kind EventKind, side string, quantity, price int64, ts time.Time) *OrderEvent {
	return &OrderEvent{
		RequestID:  requestID,
		SecurityID: securityID,
		OrderID:    orderID,
		Kind:       kind,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Timestamp:  ts,
	}
}
