package matching

import "time"

type Side int

const (
	BUY Side = iota + 1
	SELL
)

func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

func (s Side) String() string {
	if s == BUY {
		return "BUY"
	}
	return "SELL"
}

type OrderStatus int

const (
	// StatusNew marks an order that has not been queued yet (a fresh entry
	// or one pulled out of the book for resubmission).
	StatusNew OrderStatus = iota
	// StatusQueued marks an order resting in the book.
	StatusQueued
	// StatusSnapshot marks a copy kept aside to restore on rollback.
	StatusSnapshot
)

// Order is the single order representation for all supported order types.
// PeakSize > 0 makes it an iceberg order, StopPrice > 0 makes it a stop
// order; a plain limit order has neither.
type Order struct {
	OrderID     int64
	SecurityID  string
	Side        Side
	Quantity    int64 // remaining total quantity
	Price       int64
	Broker      *Broker
	Shareholder *Shareholder
	EntryTime   time.Time
	Status      OrderStatus

	// iceberg state
	PeakSize          int64
	DisplayedQuantity int64

	// stop state
	StopPrice int64
	triggered bool
}

func NewOrder(orderID int64, securityID string, side Side, quantity, price int64, broker *Broker, shareholder *Shareholder, entryTime time.Time) *Order {
	return &Order{
		OrderID:     orderID,
		SecurityID:  securityID,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Broker:      broker,
		Shareholder: shareholder,
		EntryTime:   entryTime,
		Status:      StatusNew,
	}
}

func NewIcebergOrder(orderID int64, securityID string, side Side, quantity, price int64, broker *Broker, shareholder *Shareholder, entryTime time.Time, peakSize int64) *Order {
	o := NewOrder(orderID, securityID, side, quantity, price, broker, shareholder, entryTime)
	o.PeakSize = peakSize
	return o
}

func NewStopOrder(orderID int64, securityID string, side Side, quantity, price int64, broker *Broker, shareholder *Shareholder, entryTime time.Time, stopPrice int64) *Order {
	o := NewOrder(orderID, securityID, side, quantity, price, broker, shareholder, entryTime)
	o.StopPrice = stopPrice
	return o
}

func (o *Order) IsIceberg() bool { return o.PeakSize > 0 }

func (o *Order) IsStop() bool { return o.StopPrice > 0 }

// IsActive reports whether the order takes part in matching. Only an
// untriggered stop order is inactive; it occupies its book slot but is
// invisible to matching until its trigger fires.
func (o *Order) IsActive() bool {
	return !o.IsStop() || o.triggered
}

// Activate flips the stop trigger. The flag is one-way; callers must check
// IsActive first.
func (o *Order) Activate() {
	if o.triggered {
		panic("matching: stop order activated twice")
	}
	o.triggered = true
}

// VisibleQuantity is the quantity exposed to matching: the displayed slice
// for a queued iceberg order, the remaining total otherwise.
func (o *Order) VisibleQuantity() int64 {
	if o.IsIceberg() && o.Status == StatusQueued {
		return o.DisplayedQuantity
	}
	return o.Quantity
}

// DecreaseQuantity consumes quantity from a fill. For a queued iceberg order
// the displayed slice is consumed along with the total.
func (o *Order) DecreaseQuantity(amount int64) {
	if o.IsIceberg() && o.Status == StatusQueued {
		if amount > o.DisplayedQuantity {
			panic("matching: fill exceeds displayed quantity")
		}
		o.DisplayedQuantity -= amount
		o.Quantity -= amount
		return
	}
	if amount > o.Quantity {
		panic("matching: fill exceeds remaining quantity")
	}
	o.Quantity -= amount
}

// DecreaseTotalQuantity consumes total quantity regardless of the displayed
// slice; the auction sweep fills hidden iceberg quantity too.
func (o *Order) DecreaseTotalQuantity(amount int64) {
	if amount > o.Quantity {
		panic("matching: fill exceeds remaining quantity")
	}
	o.Quantity -= amount
	if o.DisplayedQuantity > o.Quantity {
		o.DisplayedQuantity = o.Quantity
	}
}

func (o *Order) MakeQuantityZero() {
	o.Quantity = 0
	o.DisplayedQuantity = 0
}

// Replenish resets the displayed slice after it has been exhausted.
func (o *Order) Replenish() {
	o.DisplayedQuantity = min(o.Quantity, o.PeakSize)
}

// Queue marks the order as resting. Entering the queue re-discloses an
// iceberg order's peak.
func (o *Order) Queue() {
	if o.IsIceberg() {
		o.Replenish()
	}
	o.Status = StatusQueued
}

func (o *Order) MarkAsNew() {
	o.Status = StatusNew
}

// Snapshot returns a copy used to restore the order if a mutating attempt
// fails downstream. Broker and shareholder references are shared.
func (o *Order) Snapshot() *Order {
	cp := *o
	cp.Status = StatusSnapshot
	return &cp
}

// Value is the full notional of the remaining quantity, used for buy-side
// credit reservations.
func (o *Order) Value() int64 {
	return o.Price * o.Quantity
}

// queuesBefore reports whether o has strictly better price priority than
// other. Equal prices keep arrival order.
func (o *Order) queuesBefore(other *Order) bool {
	if o.Side == BUY {
		return o.Price > other.Price
	}
	return o.Price < other.Price
}

// matches reports whether o's limit crosses the resting order's price.
func (o *Order) matches(resting *Order) bool {
	if o.Side == BUY {
		return o.Price >= resting.Price
	}
	return o.Price <= resting.Price
}

func (o *Order) isQuantityIncreased(newQuantity int64) bool {
	return newQuantity > o.Quantity
}

// applyUpdate rewrites the order from an update request. The stop trigger is
// only writable while the order is still inactive.
func (o *Order) applyUpdate(spec OrderSpec) {
	o.Quantity = spec.Quantity
	o.Price = spec.Price
	if o.IsIceberg() {
		if o.PeakSize < spec.PeakSize {
			o.DisplayedQuantity = min(o.Quantity, spec.PeakSize)
		}
		o.PeakSize = spec.PeakSize
		// an in-place quantity or peak decrease must shrink the displayed
		// slice with it; displayed never exceeds min(peak, remaining)
		if limit := min(o.PeakSize, o.Quantity); o.DisplayedQuantity > limit {
			o.DisplayedQuantity = limit
		}
	}
	if o.IsStop() && !o.triggered && spec.StopPrice != 0 {
		o.StopPrice = spec.StopPrice
	}
}
