package fixgw

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/equitix/exchange-core/pkg/engine"
)

func formatOrderID(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

// MessagePool recycles quickfix messages between execution reports.
type MessagePool struct {
	pool sync.Pool
}

func NewMessagePool() *MessagePool {
	return &MessagePool{
		pool: sync.Pool{
			New: func() interface{} {
				m := quickfix.NewMessage()
				resetMessage(m)
				return m
			},
		},
	}
}

func (mp *MessagePool) Get() *quickfix.Message {
	m := mp.pool.Get().(*quickfix.Message)
	resetMessage(m)
	return m
}

func (mp *MessagePool) Put(m *quickfix.Message) {
	resetMessage(m)
	mp.pool.Put(m)
}

func resetMessage(m *quickfix.Message) {
	m.Header.Init()
	m.Body.Init()
	m.Trailer.Init()
	m.Header.Clear()
	m.Body.Clear()
	m.Trailer.Clear()
}

var execReportPool = NewMessagePool()

type reportWithSession struct {
	msg       quickfix.Messagable
	raw       *quickfix.Message
	sessionID *quickfix.SessionID
}

func releaseReport(r *reportWithSession) {
	if r != nil && r.raw != nil {
		execReportPool.Put(r.raw)
	}
}

// newOrderStatusReport builds an execution report for a lifecycle change
// without a fill: accept, replace, cancel, reject, activation.
func newOrderStatusReport(req *pendingRequest, execType enum.ExecType, ordStatus enum.OrdStatus, text string) *reportWithSession {
	msg := execReportPool.Get()
	report := executionreport.FromMessage(msg)

	report.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	report.SetOrderID(formatOrderID(req.orderID))
	report.SetExecID(uuid.New().String())
	report.SetExecType(execType)
	report.SetOrdStatus(ordStatus)
	report.SetSide(req.side)
	report.SetSymbol(req.symbol)
	report.SetClOrdID(req.clOrdID)
	if req.origClOrdID != "" {
		report.SetOrigClOrdID(req.origClOrdID)
	}
	report.SetAccount(req.account)
	report.SetOrderQty(decimal.NewFromInt(req.quantity), 0)
	report.SetPrice(decimal.NewFromInt(req.price), 0)
	report.SetLeavesQty(decimal.NewFromInt(req.quantity-req.cumQty), 0)
	report.SetCumQty(decimal.NewFromInt(req.cumQty), 0)
	report.SetAvgPx(decimal.Zero, 2)
	report.SetTransactTime(req.transactTime)
	if text != "" {
		report.SetText(text)
	}

	return &reportWithSession{msg: report, raw: msg, sessionID: req.sessionID}
}

// newFillReport builds a trade execution report for one match of the request.
func newFillReport(req *pendingRequest, trade engine.TradeInfo) *reportWithSession {
	msg := execReportPool.Get()
	report := executionreport.FromMessage(msg)

	ordStatus := enum.OrdStatus_PARTIALLY_FILLED
	if req.cumQty >= req.quantity {
		ordStatus = enum.OrdStatus_FILLED
	}

	report.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	report.Set(field.NewOrderID(formatOrderID(req.orderID)))
	report.Set(field.NewExecID(uuid.New().String()))
	report.Set(field.NewExecType(enum.ExecType_TRADE))
	report.Set(field.NewOrdStatus(ordStatus))
	report.Set(field.NewSide(req.side))
	report.Set(field.NewSymbol(req.symbol))
	report.Set(field.NewLastQty(decimal.NewFromInt(trade.Quantity), 0))
	report.Set(field.NewLastPx(decimal.NewFromInt(trade.Price), 0))
	report.Set(field.NewLeavesQty(decimal.NewFromInt(req.quantity-req.cumQty), 0))
	report.Set(field.NewCumQty(decimal.NewFromInt(req.cumQty), 0))
	report.Set(field.NewAvgPx(decimal.NewFromInt(trade.Price), 2))
	report.SetClOrdID(req.clOrdID)
	report.SetAccount(req.account)
	report.SetOrderQty(decimal.NewFromInt(req.quantity), 0)
	report.SetTransactTime(req.transactTime)

	return &reportWithSession{msg: report, raw: msg, sessionID: req.sessionID}
}
