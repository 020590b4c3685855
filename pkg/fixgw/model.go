package fixgw

import (
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

type NewOrderSingle struct {
	SessionID *quickfix.SessionID

	SenderCompID string
	Account      string
	ClOrdID      string
	Symbol       string
	OrdType      enum.OrdType
	Price        decimal.Decimal
	Side         enum.Side
	TransactTime time.Time
	OrderQty     decimal.Decimal

	// MaxFloor carries the iceberg peak, StopPx the stop trigger and MinQty
	// the minimum execution quantity; zero means absent.
	MaxFloor decimal.Decimal
	StopPx   decimal.Decimal
	MinQty   decimal.Decimal
}

type OrderCancelRequest struct {
	SessionID *quickfix.SessionID

	SenderCompID string
	OrigClOrdID  string
	ClOrdID      string
	Account      string
	Symbol       string
	Side         enum.Side
	TransactTime time.Time
}

type OrderCancelReplaceRequest struct {
	SessionID *quickfix.SessionID

	SenderCompID string
	OrigClOrdID  string
	ClOrdID      string
	Account      string
	Symbol       string
	Side         enum.Side
	TransactTime time.Time
	OrderQty     decimal.Decimal
	OrdType      enum.OrdType
	Price        decimal.Decimal

	MaxFloor decimal.Decimal
	StopPx   decimal.Decimal
	MinQty   decimal.Decimal
}
