package fixgw

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"github.com/equitix/exchange-core/pkg/engine"
	"github.com/equitix/exchange-core/pkg/logging"
	"github.com/equitix/exchange-core/pkg/matching"
)

// Gateway bridges FIX sessions and the engine. Each inbound message becomes
// an engine request; engine events for requests that entered through FIX are
// turned back into execution reports.
type Gateway struct {
	cfg    *Config
	app    *Application
	engine *engine.Engine
	log    *logging.Logger

	nextRequestID atomic.Int64
	nextOrderID   atomic.Int64

	// requestID -> *pendingRequest, clOrdID -> orderID
	requestMapping sync.Map
	orderMapping   sync.Map
}

type Config struct {
	ConfigFilepath string
	// Brokers maps a session's counterparty CompID onto its broker account.
	Brokers map[string]int64
}

// pendingRequest remembers enough about an inbound message to build its
// execution reports.
type pendingRequest struct {
	sessionID    *quickfix.SessionID
	clOrdID      string
	origClOrdID  string
	orderID      int64
	account      string
	symbol       string
	side         enum.Side
	quantity     int64
	price        int64
	cumQty       int64
	transactTime time.Time
}

func NewGateway(cfg *Config, e *engine.Engine, log *logging.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		engine: e,
		log:    log.Named("fixgw"),
	}
}

func (g *Gateway) Start(ctx context.Context) error {
	app, err := startApp(g.cfg.ConfigFilepath, g)
	if err != nil {
		g.log.Error(ctx, "start fix acceptor", zap.Error(err))
		return err
	}
	g.app = app
	return nil
}

func (g *Gateway) Stop() {
	if g.app != nil {
		stopApp(g.app)
	}
}

func (g *Gateway) brokerID(senderCompID string) int64 {
	return g.cfg.Brokers[senderCompID]
}

func shareholderID(account string) int64 {
	id, _ := strconv.ParseInt(account, 10, 64)
	return id
}

func sideFromFIX(side enum.Side) matching.Side {
	if side == enum.Side_SELL {
		return matching.SELL
	}
	return matching.BUY
}

func (g *Gateway) trackRequest(p *pendingRequest) int64 {
	requestID := g.nextRequestID.Add(1)
	g.requestMapping.Store(requestID, p)
	g.orderMapping.Store(p.clOrdID, p.orderID)
	return requestID
}

// AddOrder converts a NewOrderSingle into an engine enter-order request.
func (g *Gateway) AddOrder(msg *NewOrderSingle) {
	ctx := logging.WithNewRequestID(context.Background())
	orderID := g.nextOrderID.Add(1)
	requestID := g.trackRequest(&pendingRequest{
		sessionID:    msg.SessionID,
		clOrdID:      msg.ClOrdID,
		orderID:      orderID,
		account:      msg.Account,
		symbol:       msg.Symbol,
		side:         msg.Side,
		quantity:     msg.OrderQty.IntPart(),
		price:        msg.Price.IntPart(),
		transactTime: msg.TransactTime,
	})

	req := &engine.EnterOrderRequest{
		RequestID:                requestID,
		Type:                     engine.RequestTypeNew,
		SecurityID:               msg.Symbol,
		OrderID:                  orderID,
		Side:                     sideFromFIX(msg.Side),
		Quantity:                 msg.OrderQty.IntPart(),
		Price:                    msg.Price.IntPart(),
		BrokerID:                 g.brokerID(msg.SenderCompID),
		ShareholderID:            shareholderID(msg.Account),
		PeakSize:                 msg.MaxFloor.IntPart(),
		StopPrice:                msg.StopPx.IntPart(),
		MinimumExecutionQuantity: msg.MinQty.IntPart(),
		EntryTime:                msg.TransactTime,
	}
	if err := g.engine.HandleEnterOrder(ctx, req); err != nil {
		g.log.Error(ctx, "enter order", zap.String("cl_ord_id", msg.ClOrdID), zap.Error(err))
	}
}

// ModifyOrder converts an OrderCancelReplaceRequest into an engine update.
func (g *Gateway) ModifyOrder(msg *OrderCancelReplaceRequest) {
	ctx := logging.WithNewRequestID(context.Background())
	orderID, ok := g.lookupOrderID(msg.OrigClOrdID)
	if !ok {
		g.log.Warn(ctx, "replace for unknown order", zap.String("orig_cl_ord_id", msg.OrigClOrdID))
		return
	}

	requestID := g.trackRequest(&pendingRequest{
		sessionID:    msg.SessionID,
		clOrdID:      msg.ClOrdID,
		origClOrdID:  msg.OrigClOrdID,
		orderID:      orderID,
		account:      msg.Account,
		symbol:       msg.Symbol,
		side:         msg.Side,
		quantity:     msg.OrderQty.IntPart(),
		price:        msg.Price.IntPart(),
		transactTime: msg.TransactTime,
	})

	req := &engine.EnterOrderRequest{
		RequestID:                requestID,
		Type:                     engine.RequestTypeUpdate,
		SecurityID:               msg.Symbol,
		OrderID:                  orderID,
		Side:                     sideFromFIX(msg.Side),
		Quantity:                 msg.OrderQty.IntPart(),
		Price:                    msg.Price.IntPart(),
		BrokerID:                 g.brokerID(msg.SenderCompID),
		ShareholderID:            shareholderID(msg.Account),
		PeakSize:                 msg.MaxFloor.IntPart(),
		StopPrice:                msg.StopPx.IntPart(),
		MinimumExecutionQuantity: msg.MinQty.IntPart(),
		EntryTime:                msg.TransactTime,
	}
	if err := g.engine.HandleEnterOrder(ctx, req); err != nil {
		g.log.Error(ctx, "modify order", zap.String("cl_ord_id", msg.ClOrdID), zap.Error(err))
	}
}

// CancelOrder converts an OrderCancelRequest into an engine delete.
func (g *Gateway) CancelOrder(msg *OrderCancelRequest) {
	ctx := logging.WithNewRequestID(context.Background())
	orderID, ok := g.lookupOrderID(msg.OrigClOrdID)
	if !ok {
		g.log.Warn(ctx, "cancel for unknown order", zap.String("orig_cl_ord_id", msg.OrigClOrdID))
		return
	}

	requestID := g.trackRequest(&pendingRequest{
		sessionID:    msg.SessionID,
		clOrdID:      msg.ClOrdID,
		origClOrdID:  msg.OrigClOrdID,
		orderID:      orderID,
		account:      msg.Account,
		symbol:       msg.Symbol,
		side:         msg.Side,
		transactTime: msg.TransactTime,
	})

	req := &engine.DeleteOrderRequest{
		RequestID:  requestID,
		SecurityID: msg.Symbol,
		Side:       sideFromFIX(msg.Side),
		OrderID:    orderID,
	}
	if err := g.engine.HandleDeleteOrder(ctx, req); err != nil {
		g.log.Error(ctx, "cancel order", zap.String("cl_ord_id", msg.ClOrdID), zap.Error(err))
	}
}

func (g *Gateway) lookupOrderID(clOrdID string) (int64, bool) {
	v, ok := g.orderMapping.Load(clOrdID)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

func (g *Gateway) lookupRequest(requestID int64) (*pendingRequest, bool) {
	v, ok := g.requestMapping.Load(requestID)
	if !ok {
		return nil, false
	}
	return v.(*pendingRequest), true
}

// Publish implements engine.EventPublisher. The gateway only reacts to events
// whose request entered through one of its sessions; bus-originated requests
// are ignored here.
func (g *Gateway) Publish(ctx context.Context, event engine.Event) error {
	switch ev := event.(type) {
	case engine.OrderAcceptedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok {
			g.send(ctx, newOrderStatusReport(req, enum.ExecType_NEW, enum.OrdStatus_NEW, ""))
		}
	case engine.OrderUpdatedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok {
			g.send(ctx, newOrderStatusReport(req, enum.ExecType_REPLACED, enum.OrdStatus_REPLACED, ""))
		}
	case engine.OrderDeletedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok {
			g.send(ctx, newOrderStatusReport(req, enum.ExecType_CANCELED, enum.OrdStatus_CANCELED, ""))
		}
	case engine.OrderRejectedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok {
			g.send(ctx, newOrderStatusReport(req, enum.ExecType_REJECTED, enum.OrdStatus_REJECTED, strings.Join(ev.Reasons, ";")))
		}
	case engine.OrderExecutedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok {
			for _, trade := range ev.Trades {
				req.cumQty += trade.Quantity
				g.send(ctx, newFillReport(req, trade))
			}
		}
	case engine.OrderActivatedEvent:
		if req, ok := g.lookupRequest(ev.RequestID); ok && req.orderID == ev.OrderID {
			g.send(ctx, newOrderStatusReport(req, enum.ExecType_RESTATED, enum.OrdStatus_NEW, "STOP_ORDER_ACTIVATED"))
		}
	}
	return nil
}

func (g *Gateway) send(ctx context.Context, report *reportWithSession) {
	if report == nil || report.sessionID == nil {
		return
	}
	if err := quickfix.SendToTarget(report.msg, *report.sessionID); err != nil {
		g.log.Error(ctx, "send execution report", zap.Error(err))
	}
	releaseReport(report)
}
