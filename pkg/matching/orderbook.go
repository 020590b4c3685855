package matching

import "github.com/gammazero/deque"

// OrderBook keeps one price-time-priority queue per side. Better-priced
// orders sit closer to the front; equal prices keep arrival order. Inactive
// stop orders hold their slot but are skipped by every "first" lookup.
type OrderBook struct {
	buyQueue  deque.Deque[*Order]
	sellQueue deque.Deque[*Order]

	lastTransactionPrice    int64
	hasLastTransactionPrice bool
}

func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

func (b *OrderBook) queue(side Side) *deque.Deque[*Order] {
	if side == BUY {
		return &b.buyQueue
	}
	return &b.sellQueue
}

// Enqueue inserts the order behind every order with equal or better price.
func (b *OrderBook) Enqueue(order *Order) {
	q := b.queue(order.Side)
	at := q.Len()
	for i := 0; i < q.Len(); i++ {
		if order.queuesBefore(q.At(i)) {
			at = i
			break
		}
	}
	order.Queue()
	if at == q.Len() {
		q.PushBack(order)
	} else {
		q.Insert(at, order)
	}
}

// PutBack reinserts an order at the front of its side, preserving the
// priority it held before a rolled-back match removed it.
func (b *OrderBook) PutBack(order *Order) {
	order.Queue()
	b.queue(order.Side).PushFront(order)
}

// restoreOrder is the rollback path: remove whatever state the order is in
// and put it back at the front.
func (b *OrderBook) restoreOrder(order *Order) {
	b.RemoveByOrderID(order.Side, order.OrderID)
	b.PutBack(order)
}

func (b *OrderBook) FindByOrderID(side Side, orderID int64) *Order {
	q := b.queue(side)
	i := q.Index(func(o *Order) bool { return o.OrderID == orderID })
	if i < 0 {
		return nil
	}
	return q.At(i)
}

func (b *OrderBook) RemoveByOrderID(side Side, orderID int64) bool {
	q := b.queue(side)
	i := q.Index(func(o *Order) bool { return o.OrderID == orderID })
	if i < 0 {
		return false
	}
	q.Remove(i)
	return true
}

// GetFirst returns the best active order on the given side.
func (b *OrderBook) GetFirst(side Side) (*Order, bool) {
	q := b.queue(side)
	i := q.Index((*Order).IsActive)
	if i < 0 {
		return nil, false
	}
	return q.At(i), true
}

// RemoveFirst pops the best active order on the given side.
func (b *OrderBook) RemoveFirst(side Side) (*Order, bool) {
	q := b.queue(side)
	i := q.Index((*Order).IsActive)
	if i < 0 {
		return nil, false
	}
	return q.Remove(i), true
}

// MatchWithFirst returns the best active opposite-side order if the new
// order's limit crosses it, nil otherwise.
func (b *OrderBook) MatchWithFirst(newOrder *Order) *Order {
	first, ok := b.GetFirst(newOrder.Side.Opposite())
	if !ok || !newOrder.matches(first) {
		return nil
	}
	return first
}

func (b *OrderBook) LastTransactionPrice() (int64, bool) {
	return b.lastTransactionPrice, b.hasLastTransactionPrice
}

func (b *OrderBook) SetLastTransactionPrice(price int64) {
	b.lastTransactionPrice = price
	b.hasLastTransactionPrice = true
}

// TotalSellQuantityByShareholder sums the remaining quantity the shareholder
// has committed to open sell orders.
func (b *OrderBook) TotalSellQuantityByShareholder(shareholder *Shareholder) int64 {
	var total int64
	for i := 0; i < b.sellQueue.Len(); i++ {
		if o := b.sellQueue.At(i); o.Shareholder == shareholder {
			total += o.Quantity
		}
	}
	return total
}

// Orders returns the queued orders of one side in priority order.
func (b *OrderBook) Orders(side Side) []*Order {
	q := b.queue(side)
	out := make([]*Order, 0, q.Len())
	for i := 0; i < q.Len(); i++ {
		out = append(out, q.At(i))
	}
	return out
}

func (b *OrderBook) Len(side Side) int {
	return b.queue(side).Len()
}
