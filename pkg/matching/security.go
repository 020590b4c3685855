package matching

import "time"

// MatchingState selects how incoming orders are handled: matched on arrival
// (continuous) or collected for a uniform-price clearing (auction).
type MatchingState int

const (
	StateContinuous MatchingState = iota
	StateAuction
)

func (s MatchingState) String() string {
	if s == StateAuction {
		return "AUCTION"
	}
	return "CONTINUOUS"
}

// OrderSpec carries the order fields of an entry or update request. PeakSize
// over zero makes the order iceberg, StopPrice over zero makes it stop.
type OrderSpec struct {
	OrderID                  int64
	Side                     Side
	Quantity                 int64
	Price                    int64
	PeakSize                 int64
	StopPrice                int64
	MinimumExecutionQuantity int64
	EntryTime                time.Time
}

// Security ties one order book to the matching-state machine and runs the
// stop-activation cascade after every operation that trades. Callers must
// serialize all operations on one Security; nothing here locks.
type Security struct {
	ISIN     string
	TickSize int64
	LotSize  int64
	Book     *OrderBook
	State    MatchingState

	continuous ContinuousMatcher
	auction    AuctionMatcher
}

func NewSecurity(isin string, tickSize, lotSize int64) *Security {
	return &Security{
		ISIN:     isin,
		TickSize: tickSize,
		LotSize:  lotSize,
		Book:     NewOrderBook(),
		State:    StateContinuous,
	}
}

// NewOrder enters a fresh order. Sell orders are checked against the
// shareholder's position net of quantity already committed to open sells
// before anything mutates.
func (s *Security) NewOrder(spec OrderSpec, broker *Broker, shareholder *Shareholder) *MatchResult {
	if spec.Side == SELL &&
		!shareholder.HasEnoughPositionsOn(s.ISIN, s.Book.TotalSellQuantityByShareholder(shareholder)+spec.Quantity) {
		return NotEnoughPositionsResult()
	}
	order := s.buildOrder(spec, broker, shareholder)

	if s.State == StateAuction {
		return s.newOrderInAuction(order, spec)
	}
	return s.newOrderInContinuous(order, spec)
}

func (s *Security) newOrderInAuction(order *Order, spec OrderSpec) *MatchResult {
	if spec.MinimumExecutionQuantity != 0 {
		return MinQuantityInAuctionResult()
	}
	return executeWithoutMatching(s.Book, order)
}

func (s *Security) newOrderInContinuous(order *Order, spec OrderSpec) *MatchResult {
	var activated []*Order
	if s.tryActivate(order) {
		activated = append(activated, order)
	}

	result := s.continuous.ExecuteWithMinimumQuantityCondition(s.Book, order, spec.MinimumExecutionQuantity)

	s.updateLastTransactionPrice(result)
	activated = append(activated, s.activateQueuedStopOrders()...)
	result.ActivatedOrders = append(result.ActivatedOrders, activated...)
	return result
}

// UpdateOrder looks up the order by (side, id), validates type-specific
// fields, and applies the priority-loss rule: an update that keeps priority
// is applied in place, one that loses priority resubmits the order through
// the full entry procedure and restores the pre-update snapshot if that
// resubmission fails.
func (s *Security) UpdateOrder(spec OrderSpec) (*MatchResult, error) {
	order := s.Book.FindByOrderID(spec.Side, spec.OrderID)
	if err := validateUpdate(spec, order); err != nil {
		return nil, err
	}
	if s.updateLacksPositions(spec, order) {
		return NotEnoughPositionsResult(), nil
	}

	if spec.Side == BUY {
		order.Broker.IncreaseCreditBy(order.Value())
	}

	if s.State == StateAuction {
		return s.updateInAuction(spec, order), nil
	}
	return s.updateInContinuous(spec, order), nil
}

func (s *Security) updateInAuction(spec OrderSpec, order *Order) *MatchResult {
	original := order.Snapshot()
	s.Book.RemoveByOrderID(spec.Side, spec.OrderID)
	order.applyUpdate(spec)
	order.MarkAsNew()

	result := executeWithoutMatching(s.Book, order)
	if result.Outcome != OutcomeExecuted {
		s.Book.Enqueue(original)
		if original.Side == BUY {
			original.Broker.DecreaseCreditBy(original.Value())
		}
	}
	return result
}

func (s *Security) updateInContinuous(spec OrderSpec, order *Order) *MatchResult {
	original := order.Snapshot()
	order.applyUpdate(spec)
	if !losesPriority(spec, original) {
		if spec.Side == BUY {
			order.Broker.DecreaseCreditBy(order.Value())
		}
		return ExecutedResult(nil, nil)
	}

	order.MarkAsNew()
	s.Book.RemoveByOrderID(spec.Side, spec.OrderID)

	var activated []*Order
	if s.tryActivate(order) {
		activated = append(activated, order)
	}

	result := s.continuous.Execute(s.Book, order)
	if result.Outcome != OutcomeExecuted {
		s.Book.Enqueue(original)
		if original.Side == BUY {
			original.Broker.DecreaseCreditBy(original.Value())
		}
	}

	s.updateLastTransactionPrice(result)
	activated = append(activated, s.activateQueuedStopOrders()...)
	result.ActivatedOrders = append(result.ActivatedOrders, activated...)
	return result
}

// DeleteOrder removes the order and releases any buy-side credit reserved
// for it.
func (s *Security) DeleteOrder(side Side, orderID int64) error {
	order := s.Book.FindByOrderID(side, orderID)
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Side == BUY {
		order.Broker.IncreaseCreditBy(order.Value())
	}
	s.Book.RemoveByOrderID(side, orderID)
	return nil
}

// ExecuteAuction clears the book at the opening price and runs the
// stop-activation cascade on the auction trades. Callers only invoke this
// while the security is in auction mode.
func (s *Security) ExecuteAuction() *MatchResult {
	opening := s.Book.CalculateOpeningState()
	result := s.auction.Execute(s.Book, opening, s.ISIN)

	s.updateLastTransactionPrice(result)
	result.ActivatedOrders = append(result.ActivatedOrders, s.activateQueuedStopOrders()...)
	return result
}

// SetMatchingState switches the matching mode. Leaving auction mode first
// clears the book at the opening price; the resulting trades, if any, are
// returned so the caller can publish them.
func (s *Security) SetMatchingState(target MatchingState) *MatchResult {
	var result *MatchResult
	if s.State == StateAuction {
		result = s.ExecuteAuction()
	}
	s.State = target
	return result
}

func (s *Security) buildOrder(spec OrderSpec, broker *Broker, shareholder *Shareholder) *Order {
	if spec.PeakSize > 0 {
		return NewIcebergOrder(spec.OrderID, s.ISIN, spec.Side, spec.Quantity, spec.Price, broker, shareholder, spec.EntryTime, spec.PeakSize)
	}
	if spec.StopPrice > 0 {
		return NewStopOrder(spec.OrderID, s.ISIN, spec.Side, spec.Quantity, spec.Price, broker, shareholder, spec.EntryTime, spec.StopPrice)
	}
	return NewOrder(spec.OrderID, s.ISIN, spec.Side, spec.Quantity, spec.Price, broker, shareholder, spec.EntryTime)
}

func (s *Security) updateLacksPositions(spec OrderSpec, order *Order) bool {
	return spec.Side == SELL &&
		!order.Shareholder.HasEnoughPositionsOn(s.ISIN,
			s.Book.TotalSellQuantityByShareholder(order.Shareholder)-order.Quantity+spec.Quantity)
}

func (s *Security) updateLastTransactionPrice(result *MatchResult) {
	if result == nil || len(result.Trades) == 0 {
		return
	}
	s.Book.SetLastTransactionPrice(result.Trades[len(result.Trades)-1].Price)
}

// tryActivate fires the stop trigger when the last transaction price has
// reached it. Returns whether an activation happened.
func (s *Security) tryActivate(order *Order) bool {
	if !order.IsStop() || order.IsActive() {
		return false
	}
	last, ok := s.Book.LastTransactionPrice()
	if !ok {
		return false
	}
	if (order.Side == BUY && order.StopPrice <= last) ||
		(order.Side == SELL && order.StopPrice >= last) {
		order.Activate()
		return true
	}
	return false
}

// activateQueuedStopOrders is the post-trade cascade: every still-inactive
// stop order on either side is re-evaluated against the new last transaction
// price. Activated orders stay queued; they match only on a later attempt.
func (s *Security) activateQueuedStopOrders() []*Order {
	var activated []*Order
	for _, side := range []Side{BUY, SELL} {
		for _, order := range s.Book.Orders(side) {
			if s.tryActivate(order) {
				activated = append(activated, order)
			}
		}
	}
	return activated
}

// losesPriority reports whether the update forfeits the order's queue slot:
// a quantity increase, any price change, a larger iceberg peak, or a stop
// trigger moved closer to firing.
func losesPriority(spec OrderSpec, original *Order) bool {
	if original.isQuantityIncreased(spec.Quantity) || spec.Price != original.Price {
		return true
	}
	if original.IsIceberg() && original.PeakSize < spec.PeakSize {
		return true
	}
	if original.IsStop() {
		if original.Side == BUY && original.StopPrice > spec.StopPrice {
			return true
		}
		if original.Side == SELL && original.StopPrice < spec.StopPrice {
			return true
		}
	}
	return false
}

func validateUpdate(spec OrderSpec, order *Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if order.IsIceberg() && spec.PeakSize == 0 {
		return ErrPeakSizeRequired
	}
	if !order.IsIceberg() && spec.PeakSize != 0 {
		return ErrPeakSizeOnNonIceberg
	}
	if order.IsStop() && order.IsActive() && spec.StopPrice != 0 {
		return ErrStopPriceChangeOnActive
	}
	if !order.IsStop() && spec.StopPrice != 0 {
		return ErrStopPriceOnNonStop
	}
	return nil
}
