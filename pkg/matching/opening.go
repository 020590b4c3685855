package matching

// OpeningState is the outcome of the call-auction clearing scan: the
// quantity that can trade at the chosen uniform price. HasPrice is false
// when no price allows any trade.
type OpeningState struct {
	TradableQuantity int64
	Price            int64
	HasPrice         bool
}

// CalculateOpeningState scans every integer tick between the two sides'
// price extremes and picks the price maximising tradable quantity. Ties go
// to the candidate closest to the last transaction price, or to the lowest
// candidate if no transaction has happened yet; equal distances resolve to
// the price found first scanning upward.
func (b *OrderBook) CalculateOpeningState() OpeningState {
	var buys, sells []*Order
	for _, o := range b.Orders(BUY) {
		if o.IsActive() {
			buys = append(buys, o)
		}
	}
	for _, o := range b.Orders(SELL) {
		if o.IsActive() {
			sells = append(sells, o)
		}
	}
	if len(buys) == 0 || len(sells) == 0 {
		return OpeningState{}
	}

	minPrice, maxPrice := buys[0].Price, buys[0].Price
	for _, side := range [][]*Order{buys, sells} {
		for _, o := range side {
			if o.Price < minPrice {
				minPrice = o.Price
			}
			if o.Price > maxPrice {
				maxPrice = o.Price
			}
		}
	}

	var maxTradable int64
	var candidates []int64
	for price := minPrice; price <= maxPrice; price++ {
		var buyQuantity, sellQuantity int64
		for _, o := range buys {
			if o.Price >= price {
				buyQuantity += o.Quantity
			}
		}
		for _, o := range sells {
			if o.Price <= price {
				sellQuantity += o.Quantity
			}
		}
		tradable := min(buyQuantity, sellQuantity)
		switch {
		case tradable > maxTradable:
			maxTradable = tradable
			candidates = candidates[:0]
			candidates = append(candidates, price)
		case tradable == maxTradable:
			candidates = append(candidates, price)
		}
	}

	if maxTradable == 0 {
		return OpeningState{}
	}

	last, ok := b.LastTransactionPrice()
	if !ok {
		return OpeningState{TradableQuantity: maxTradable, Price: candidates[0], HasPrice: true}
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if abs64(p-last) < abs64(best-last) {
			best = p
		}
	}
	return OpeningState{TradableQuantity: maxTradable, Price: best, HasPrice: true}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
