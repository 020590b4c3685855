package matching

// AuctionMatcher clears crossed orders at a single uniform price. Orders
// were queued with buy-side notional reserved at their limit price, so each
// popped buy order first gets its reservation released and then pays the
// opening price per trade; whatever remains unfilled is re-reserved at its
// limit when it goes back into the book.
type AuctionMatcher struct{}

// Execute runs the uniform-price sweep at the given opening state. Inactive
// stop orders are skipped by the pops and keep their place in the book.
func (m *AuctionMatcher) Execute(book *OrderBook, opening OpeningState, securityID string) *MatchResult {
	var trades []*Trade
	if !opening.HasPrice {
		return AuctionResult(trades)
	}
	openingPrice := opening.Price

	buy, hasBuy := book.RemoveFirst(BUY)
	sell, hasSell := book.RemoveFirst(SELL)
	if hasBuy {
		buy.Broker.IncreaseCreditBy(buy.Value())
	}

	for hasBuy && hasSell && buy.Price >= openingPrice && sell.Price <= openingPrice {
		quantity := min(buy.Quantity, sell.Quantity)
		trades = append(trades, NewTrade(securityID, openingPrice, quantity, buy, sell))
		buy.Broker.DecreaseCreditBy(quantity * openingPrice)
		sell.Broker.IncreaseCreditBy(quantity * openingPrice)
		buy.DecreaseTotalQuantity(quantity)
		sell.DecreaseTotalQuantity(quantity)

		if sell.Quantity == 0 {
			sell, hasSell = book.RemoveFirst(SELL)
		}
		if buy.Quantity == 0 {
			buy, hasBuy = book.RemoveFirst(BUY)
			if hasBuy {
				buy.Broker.IncreaseCreditBy(buy.Value())
			}
		}
	}

	// a popped order with quantity left re-enters at the tail of its price
	// level, so it gives up time priority over equal-priced peers
	if hasBuy && buy.Quantity > 0 {
		buy.Broker.DecreaseCreditBy(buy.Value())
		book.Enqueue(buy)
	}
	if hasSell && sell.Quantity > 0 {
		book.Enqueue(sell)
	}
	return AuctionResult(trades)
}
