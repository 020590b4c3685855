package matching

// Trade is one execution between a buy and a sell order.
type Trade struct {
	SecurityID string
	Price      int64
	Quantity   int64
	Buy        *Order
	Sell       *Order
}

// NewTrade pairs the two orders by side; the caller passes them in any order.
func NewTrade(securityID string, price, quantity int64, order1, order2 *Order) *Trade {
	t := &Trade{SecurityID: securityID, Price: price, Quantity: quantity}
	if order1.Side == BUY {
		t.Buy, t.Sell = order1, order2
	} else {
		t.Buy, t.Sell = order2, order1
	}
	return t
}

func (t *Trade) TradedValue() int64 {
	return t.Price * t.Quantity
}

func (t *Trade) buyerHasEnoughCredit() bool {
	return t.Buy.Broker.HasEnoughCredit(t.TradedValue())
}

func (t *Trade) decreaseBuyersCredit() {
	t.Buy.Broker.DecreaseCreditBy(t.TradedValue())
}

func (t *Trade) increaseSellersCredit() {
	t.Sell.Broker.IncreaseCreditBy(t.TradedValue())
}
