package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	eventstore "github.com/equitix/exchange-core/pkg/engine/event_store"
	"github.com/equitix/exchange-core/pkg/engine/model"
	"github.com/equitix/exchange-core/pkg/engine/repo"
	"github.com/equitix/exchange-core/pkg/logging"
	"github.com/equitix/exchange-core/pkg/matching"
)

// Validation reasons reported on OrderRejectedEvent. A request can fail more
// than one check; all reasons are collected before rejecting.
const (
	ReasonInvalidOrderID          = "INVALID_ORDER_ID"
	ReasonQuantityNotPositive     = "ORDER_QUANTITY_NOT_POSITIVE"
	ReasonPriceNotPositive        = "ORDER_PRICE_NOT_POSITIVE"
	ReasonUnknownSecurity         = "UNKNOWN_SECURITY_ISIN"
	ReasonQuantityNotLotMultiple  = "QUANTITY_NOT_MULTIPLE_OF_LOT_SIZE"
	ReasonPriceNotTickMultiple    = "PRICE_NOT_MULTIPLE_OF_TICK_SIZE"
	ReasonUnknownBroker           = "UNKNOWN_BROKER_ID"
	ReasonUnknownShareholder      = "UNKNOWN_SHAREHOLDER_ID"
	ReasonInvalidPeakSize         = "INVALID_PEAK_SIZE"
	ReasonInvalidMinimumQuantity  = "INVALID_MINIMUM_EXECUTION_QUANTITY"
	ReasonInvalidStopPrice        = "INVALID_STOP_PRICE"
	ReasonStopWithMinimumQuantity = "STOP_ORDER_CANNOT_HAVE_MINIMUM_EXECUTION_QUANTITY"
	ReasonStopWithPeakSize        = "STOP_ORDER_CANNOT_BE_ICEBERG"
	ReasonOrderNotFound           = "ORDER_ID_NOT_FOUND"
	ReasonPeakSizeOnNonIceberg    = "CANNOT_SPECIFY_PEAK_SIZE_FOR_A_NON_ICEBERG_ORDER"
	ReasonStopPriceChangeOnActive = "CANNOT_CHANGE_STOP_PRICE_OF_ACTIVATED_ORDER"
	ReasonStopPriceOnNonStop      = "CANNOT_SPECIFY_STOP_PRICE_FOR_A_NON_STOP_ORDER"
)

// MarketDataSink receives book snapshots after every state change. Quote
// dissemination must never block matching, so implementations should be fast
// or buffer internally.
type MarketDataSink interface {
	PublishQuote(ctx context.Context, quote Quote) error
	PublishOpening(ctx context.Context, securityID string, price, tradableQuantity int64) error
}

// Quote is a top-of-book snapshot for one security.
type Quote struct {
	SecurityID string    `json:"security_id"`
	BestBid    int64     `json:"best_bid"`
	HasBid     bool      `json:"has_bid"`
	BestAsk    int64     `json:"best_ask"`
	HasAsk     bool      `json:"has_ask"`
	LastPrice  int64     `json:"last_price"`
	HasLast    bool      `json:"has_last"`
	At         time.Time `json:"at"`
}

type Engine struct {
	registry   *Registry
	publisher  EventPublisher
	journal    eventstore.EventStore
	repo       repo.IRepo
	marketData MarketDataSink
	log        *logging.Logger

	// one mutex per security keeps requests for the same book serialized
	// while different books match in parallel
	locks sync.Map
}

type Option func(*Engine)

// WithRepo enables database persistence of order events and trades.
func WithRepo(r repo.IRepo) Option {
	return func(e *Engine) { e.repo = r }
}

// WithMarketData enables quote publication after every book change.
func WithMarketData(sink MarketDataSink) Option {
	return func(e *Engine) { e.marketData = sink }
}

func New(publisher EventPublisher, journal eventstore.EventStore, log *logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		registry:  NewRegistry(),
		publisher: publisher,
		journal:   journal,
		log:       log.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) lockSecurity(isin string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(isin, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// HandleEnterOrder validates and executes a new-order or update request and
// publishes the resulting events.
func (e *Engine) HandleEnterOrder(ctx context.Context, req *EnterOrderRequest) error {
	if reasons := e.validateEnterOrder(req); len(reasons) != 0 {
		return e.reject(ctx, req.RequestID, req.SecurityID, req.OrderID, reasons)
	}

	security := e.registry.Security(req.SecurityID)
	broker := e.registry.Broker(req.BrokerID)
	shareholder := e.registry.Shareholder(req.ShareholderID)
	spec := matching.OrderSpec{
		OrderID:                  req.OrderID,
		Side:                     req.Side,
		Quantity:                 req.Quantity,
		Price:                    req.Price,
		PeakSize:                 req.PeakSize,
		StopPrice:                req.StopPrice,
		MinimumExecutionQuantity: req.MinimumExecutionQuantity,
		EntryTime:                req.EntryTime,
	}

	mu := e.lockSecurity(req.SecurityID)
	mu.Lock()
	defer mu.Unlock()

	var result *matching.MatchResult
	if req.Type == RequestTypeUpdate {
		var err error
		result, err = security.UpdateOrder(spec)
		if err != nil {
			return e.reject(ctx, req.RequestID, req.SecurityID, req.OrderID, []string{updateErrorReason(err)})
		}
	} else {
		result = security.NewOrder(spec, broker, shareholder)
	}

	if result.Outcome != matching.OutcomeExecuted {
		return e.reject(ctx, req.RequestID, req.SecurityID, req.OrderID, []string{result.Outcome.String()})
	}

	if req.Type == RequestTypeUpdate {
		e.publish(ctx, OrderUpdatedEvent{RequestID: req.RequestID, SecurityID: req.SecurityID, OrderID: req.OrderID})
		e.journalEvent(ctx, req, model.EventKindUpdated, "")
	} else {
		e.publish(ctx, OrderAcceptedEvent{RequestID: req.RequestID, SecurityID: req.SecurityID, OrderID: req.OrderID})
		e.journalEvent(ctx, req, model.EventKindAccepted, "")
	}

	e.publishMatchResult(ctx, security, req.RequestID, req.OrderID, result)
	e.publishOpeningPrice(ctx, security)
	e.publishQuote(ctx, security)
	return nil
}

// HandleDeleteOrder removes an order from the book and releases any credit it
// held.
func (e *Engine) HandleDeleteOrder(ctx context.Context, req *DeleteOrderRequest) error {
	var reasons []string
	if req.OrderID <= 0 {
		reasons = append(reasons, ReasonInvalidOrderID)
	}
	security := e.registry.Security(req.SecurityID)
	if security == nil {
		reasons = append(reasons, ReasonUnknownSecurity)
	}
	if len(reasons) != 0 {
		return e.reject(ctx, req.RequestID, req.SecurityID, req.OrderID, reasons)
	}

	mu := e.lockSecurity(req.SecurityID)
	mu.Lock()
	defer mu.Unlock()

	if err := security.DeleteOrder(req.Side, req.OrderID); err != nil {
		return e.reject(ctx, req.RequestID, req.SecurityID, req.OrderID, []string{updateErrorReason(err)})
	}

	e.publish(ctx, OrderDeletedEvent{RequestID: req.RequestID, SecurityID: req.SecurityID, OrderID: req.OrderID})
	e.journal.AddEvent(&model.OrderEvent{
		RequestID:  req.RequestID,
		SecurityID: req.SecurityID,
		OrderID:    req.OrderID,
		Kind:       model.EventKindDeleted,
		Side:       req.Side.String(),
		Timestamp:  time.Now(),
	})
	e.publishOpeningPrice(ctx, security)
	e.publishQuote(ctx, security)
	return nil
}

// HandleChangeMatchingState switches a security between continuous and
// auction matching. Leaving auction mode runs the auction first, so the
// change can produce trades.
func (e *Engine) HandleChangeMatchingState(ctx context.Context, req *ChangeMatchingStateRequest) error {
	security := e.registry.Security(req.SecurityID)
	if security == nil {
		return e.reject(ctx, req.RequestID, req.SecurityID, 0, []string{ReasonUnknownSecurity})
	}

	mu := e.lockSecurity(req.SecurityID)
	mu.Lock()
	defer mu.Unlock()

	result := security.SetMatchingState(req.TargetState)
	e.publish(ctx, SecurityStateChangedEvent{
		SecurityID: req.SecurityID,
		State:      req.TargetState,
		ChangedAt:  time.Now(),
	})
	if result != nil {
		e.publishAuctionTrades(ctx, security, result)
	}
	e.publishQuote(ctx, security)
	return nil
}

func (e *Engine) validateEnterOrder(req *EnterOrderRequest) []string {
	var reasons []string
	if req.OrderID <= 0 {
		reasons = append(reasons, ReasonInvalidOrderID)
	}
	if req.Quantity <= 0 {
		reasons = append(reasons, ReasonQuantityNotPositive)
	}
	if req.Price <= 0 {
		reasons = append(reasons, ReasonPriceNotPositive)
	}
	security := e.registry.Security(req.SecurityID)
	if security == nil {
		reasons = append(reasons, ReasonUnknownSecurity)
	} else {
		if req.Quantity%security.LotSize != 0 {
			reasons = append(reasons, ReasonQuantityNotLotMultiple)
		}
		if req.Price%security.TickSize != 0 {
			reasons = append(reasons, ReasonPriceNotTickMultiple)
		}
	}
	if e.registry.Broker(req.BrokerID) == nil {
		reasons = append(reasons, ReasonUnknownBroker)
	}
	if e.registry.Shareholder(req.ShareholderID) == nil {
		reasons = append(reasons, ReasonUnknownShareholder)
	}
	if req.PeakSize < 0 || (req.PeakSize > 0 && req.PeakSize >= req.Quantity) {
		reasons = append(reasons, ReasonInvalidPeakSize)
	}
	if req.MinimumExecutionQuantity < 0 || req.MinimumExecutionQuantity > req.Quantity {
		reasons = append(reasons, ReasonInvalidMinimumQuantity)
	}
	if req.StopPrice < 0 {
		reasons = append(reasons, ReasonInvalidStopPrice)
	}
	if req.StopPrice > 0 {
		if req.MinimumExecutionQuantity > 0 {
			reasons = append(reasons, ReasonStopWithMinimumQuantity)
		}
		if req.PeakSize > 0 {
			reasons = append(reasons, ReasonStopWithPeakSize)
		}
	}
	return reasons
}

func updateErrorReason(err error) string {
	switch err {
	case matching.ErrOrderNotFound:
		return ReasonOrderNotFound
	case matching.ErrPeakSizeRequired:
		return ReasonInvalidPeakSize
	case matching.ErrPeakSizeOnNonIceberg:
		return ReasonPeakSizeOnNonIceberg
	case matching.ErrStopPriceChangeOnActive:
		return ReasonStopPriceChangeOnActive
	case matching.ErrStopPriceOnNonStop:
		return ReasonStopPriceOnNonStop
	default:
		return err.Error()
	}
}

func (e *Engine) reject(ctx context.Context, requestID int64, securityID string, orderID int64, reasons []string) error {
	e.publish(ctx, OrderRejectedEvent{RequestID: requestID, SecurityID: securityID, OrderID: orderID, Reasons: reasons})
	e.journal.AddEvent(&model.OrderEvent{
		RequestID:  requestID,
		SecurityID: securityID,
		OrderID:    orderID,
		Kind:       model.EventKindRejected,
		Reason:     reasons[0],
		Timestamp:  time.Now(),
	})
	return nil
}

func (e *Engine) publishMatchResult(ctx context.Context, security *matching.Security, requestID, orderID int64, result *matching.MatchResult) {
	if len(result.Trades) != 0 {
		e.publish(ctx, OrderExecutedEvent{
			RequestID:  requestID,
			SecurityID: security.ISIN,
			OrderID:    orderID,
			Trades:     tradeInfos(result.Trades),
		})
		e.persistTrades(ctx, result.Trades)
	}
	for _, activated := range result.ActivatedOrders {
		e.publish(ctx, OrderActivatedEvent{RequestID: requestID, SecurityID: security.ISIN, OrderID: activated.OrderID})
		e.journal.AddEvent(&model.OrderEvent{
			RequestID:  requestID,
			SecurityID: security.ISIN,
			OrderID:    activated.OrderID,
			Kind:       model.EventKindActivated,
			Side:       activated.Side.String(),
			Quantity:   activated.Quantity,
			Price:      activated.Price,
			Timestamp:  time.Now(),
		})
	}
}

// publishAuctionTrades announces each auction execution individually; the
// uniform price makes per-order execution events redundant.
func (e *Engine) publishAuctionTrades(ctx context.Context, security *matching.Security, result *matching.MatchResult) {
	for _, trade := range result.Trades {
		e.publish(ctx, TradeEvent{
			SecurityID:  trade.SecurityID,
			Price:       trade.Price,
			Quantity:    trade.Quantity,
			BuyOrderID:  trade.Buy.OrderID,
			SellOrderID: trade.Sell.OrderID,
		})
	}
	e.persistTrades(ctx, result.Trades)
	for _, activated := range result.ActivatedOrders {
		e.publish(ctx, OrderActivatedEvent{SecurityID: security.ISIN, OrderID: activated.OrderID})
	}
}

// publishOpeningPrice reports the indicative opening while a security is
// collecting auction orders.
func (e *Engine) publishOpeningPrice(ctx context.Context, security *matching.Security) {
	if security.State != matching.StateAuction {
		return
	}
	opening := security.Book.CalculateOpeningState()
	e.publish(ctx, OpeningPriceEvent{
		SecurityID:       security.ISIN,
		OpeningPrice:     opening.Price,
		TradableQuantity: opening.TradableQuantity,
	})
	if e.marketData != nil {
		if err := e.marketData.PublishOpening(ctx, security.ISIN, opening.Price, opening.TradableQuantity); err != nil {
			e.log.Warn(ctx, "publish opening state", zap.String("security_id", security.ISIN), zap.Error(err))
		}
	}
}

func (e *Engine) publishQuote(ctx context.Context, security *matching.Security) {
	if e.marketData == nil {
		return
	}
	quote := Quote{SecurityID: security.ISIN, At: time.Now()}
	if best, ok := security.Book.GetFirst(matching.BUY); ok {
		quote.BestBid, quote.HasBid = best.Price, true
	}
	if best, ok := security.Book.GetFirst(matching.SELL); ok {
		quote.BestAsk, quote.HasAsk = best.Price, true
	}
	if last, ok := security.Book.LastTransactionPrice(); ok {
		quote.LastPrice, quote.HasLast = last, true
	}
	if err := e.marketData.PublishQuote(ctx, quote); err != nil {
		e.log.Warn(ctx, "publish quote", zap.String("security_id", security.ISIN), zap.Error(err))
	}
}

func (e *Engine) publish(ctx context.Context, event Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.log.Error(ctx, "publish event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

func (e *Engine) journalEvent(ctx context.Context, req *EnterOrderRequest, kind model.EventKind, reason string) {
	ev := &model.OrderEvent{
		RequestID:  req.RequestID,
		SecurityID: req.SecurityID,
		OrderID:    req.OrderID,
		Kind:       kind,
		Side:       req.Side.String(),
		Quantity:   req.Quantity,
		Price:      req.Price,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
	e.journal.AddEvent(ev)
	if e.repo != nil {
		if _, err := e.repo.OrderEvent().Create(ctx, ev); err != nil {
			e.log.Error(ctx, "persist order event", zap.Error(err))
		}
	}
}

func (e *Engine) persistTrades(ctx context.Context, trades []*matching.Trade) {
	if e.repo == nil || len(trades) == 0 {
		return
	}
	records := make([]*model.Trade, 0, len(trades))
	now := time.Now()
	for _, trade := range trades {
		records = append(records, &model.Trade{
			SecurityID:  trade.SecurityID,
			Price:       trade.Price,
			Quantity:    trade.Quantity,
			BuyOrderID:  trade.Buy.OrderID,
			SellOrderID: trade.Sell.OrderID,
			ExecutedAt:  now,
		})
	}
	if _, err := e.repo.Trade().BulkCreate(ctx, records); err != nil {
		e.log.Error(ctx, "persist trades", zap.Error(err))
	}
}
