package matching

// ContinuousMatcher implements continuous double-auction matching: an
// incoming order trades immediately against the opposite queue at resting
// prices, and whatever cannot trade rests in the book. All credit and book
// mutations made during an attempt are invertible through the rollback
// helpers, so a failed downstream check leaves no partial effect behind.
type ContinuousMatcher struct{}

// Match runs the core loop: consume the best active opposite order while
// prices cross and quantity remains. Buyer credit is checked per trade; a
// shortfall rolls back everything accumulated in this call.
func (m *ContinuousMatcher) Match(book *OrderBook, newOrder *Order) *MatchResult {
	var trades []*Trade
	for newOrder.Quantity > 0 {
		resting := book.MatchWithFirst(newOrder)
		if resting == nil {
			break
		}

		quantity := min(newOrder.Quantity, resting.VisibleQuantity())
		trade := NewTrade(newOrder.SecurityID, resting.Price, quantity, newOrder, resting)
		if newOrder.Side == BUY {
			if !trade.buyerHasEnoughCredit() {
				m.rollbackTrades(book, newOrder, trades)
				return NotEnoughCreditResult()
			}
			trade.decreaseBuyersCredit()
		}
		trade.increaseSellersCredit()
		trades = append(trades, trade)

		if newOrder.Quantity >= resting.VisibleQuantity() {
			newOrder.DecreaseQuantity(quantity)
			book.RemoveFirst(resting.Side)
			resting.DecreaseQuantity(quantity)
			if resting.IsIceberg() && resting.Quantity > 0 {
				book.Enqueue(resting)
			}
		} else {
			resting.DecreaseQuantity(quantity)
			newOrder.MakeQuantityZero()
		}
	}
	return ExecutedResult(newOrder, trades)
}

// Execute matches an order and rests the remainder. An inactive stop order
// skips matching entirely and only reserves credit and queues. Shareholder
// positions transfer once the whole attempt has succeeded.
func (m *ContinuousMatcher) Execute(book *OrderBook, order *Order) *MatchResult {
	if !order.IsActive() {
		return executeWithoutMatching(book, order)
	}

	result := m.Match(book, order)
	if result.Outcome == OutcomeNotEnoughCredit {
		return result
	}

	if result.Remainder.Quantity > 0 {
		if order.Side == BUY {
			if !order.Broker.HasEnoughCredit(order.Value()) {
				m.rollbackTrades(book, order, result.Trades)
				return NotEnoughCreditResult()
			}
			order.Broker.DecreaseCreditBy(order.Value())
		}
		book.Enqueue(result.Remainder)
	}
	for _, trade := range result.Trades {
		trade.Buy.Shareholder.IncPosition(trade.SecurityID, trade.Quantity)
		trade.Sell.Shareholder.DecPosition(trade.SecurityID, trade.Quantity)
	}
	return result
}

// ExecuteWithMinimumQuantityCondition executes the order and undoes the
// whole attempt when the executed quantity falls short of the minimum. The
// condition never applies to stop orders.
func (m *ContinuousMatcher) ExecuteWithMinimumQuantityCondition(book *OrderBook, order *Order, minimumExecutionQuantity int64) *MatchResult {
	originalQuantity := order.Quantity
	result := m.Execute(book, order)
	if order.IsStop() {
		return result
	}
	if result.Remainder == nil {
		return result
	}

	if originalQuantity-result.Remainder.Quantity < minimumExecutionQuantity {
		for _, trade := range result.Trades {
			trade.Buy.Shareholder.DecPosition(trade.SecurityID, trade.Quantity)
			trade.Sell.Shareholder.IncPosition(trade.SecurityID, trade.Quantity)
		}
		if result.Remainder.Quantity > 0 {
			book.RemoveByOrderID(order.Side, order.OrderID)
			if order.Side == BUY {
				m.rollbackRemainder(order, result.Remainder)
			}
		}
		m.rollbackTrades(book, order, result.Trades)
		return MinQuantityFailedResult()
	}
	return result
}

// rollbackTrades inverts every credit movement and book mutation the given
// trades performed. Counterparties are reinserted front-first in reverse
// trade order so the queue ends up exactly as it was before the attempt.
func (m *ContinuousMatcher) rollbackTrades(book *OrderBook, newOrder *Order, trades []*Trade) {
	if newOrder.Side == BUY {
		m.rollbackTradesForBuyOrder(book, newOrder, trades)
	} else {
		m.rollbackTradesForSellOrder(book, newOrder, trades)
	}
}

// rollbackRemainder releases the credit reserved when a buy remainder was
// queued.
func (m *ContinuousMatcher) rollbackRemainder(newOrder *Order, remainder *Order) {
	newOrder.Broker.IncreaseCreditBy(remainder.Value())
}

func (m *ContinuousMatcher) rollbackTradesForBuyOrder(book *OrderBook, newOrder *Order, trades []*Trade) {
	var paid int64
	for _, trade := range trades {
		paid += trade.TradedValue()
	}
	newOrder.Broker.IncreaseCreditBy(paid)
	for _, trade := range trades {
		trade.Sell.Broker.DecreaseCreditBy(trade.TradedValue())
	}
	for i := len(trades) - 1; i >= 0; i-- {
		trade := trades[i]
		trade.Sell.Quantity += trade.Quantity
		book.restoreOrder(trade.Sell)
	}
}

// For a sell aggressor only the aggressor's broker moved during the match
// loop; resting buyers spent credit reserved when they were queued, and that
// reservation backs them again once they are restored.
func (m *ContinuousMatcher) rollbackTradesForSellOrder(book *OrderBook, newOrder *Order, trades []*Trade) {
	var received int64
	for _, trade := range trades {
		received += trade.TradedValue()
	}
	newOrder.Broker.DecreaseCreditBy(received)
	for i := len(trades) - 1; i >= 0; i-- {
		trade := trades[i]
		trade.Buy.Quantity += trade.Quantity
		book.restoreOrder(trade.Buy)
	}
}

// executeWithoutMatching rests an order without running the match loop,
// reserving the full notional for a buy.
func executeWithoutMatching(book *OrderBook, order *Order) *MatchResult {
	if order.Side == BUY {
		if !order.Broker.HasEnoughCredit(order.Value()) {
			return NotEnoughCreditResult()
		}
		order.Broker.DecreaseCreditBy(order.Value())
	}
	book.Enqueue(order)
	return ExecutedResult(order, nil)
}
