package matching

import "testing"

func TestEnqueueKeepsPriceTimePriorityOnBuySide(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)

	b.Enqueue(NewOrder(1, "ABC123", BUY, 10, 100, broker, sh, testTime))
	b.Enqueue(NewOrder(2, "ABC123", BUY, 10, 102, broker, sh, testTime))
	b.Enqueue(NewOrder(3, "ABC123", BUY, 10, 100, broker, sh, testTime))
	b.Enqueue(NewOrder(4, "ABC123", BUY, 10, 101, broker, sh, testTime))

	if got := queuedIDs(b, BUY); !sameIDs(got, []int64{2, 4, 1, 3}) {
		t.Errorf("buy queue order = %v, want [2 4 1 3]", got)
	}
}

func TestEnqueueKeepsPriceTimePriorityOnSellSide(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)

	b.Enqueue(NewOrder(1, "ABC123", SELL, 10, 100, broker, sh, testTime))
	b.Enqueue(NewOrder(2, "ABC123", SELL, 10, 98, broker, sh, testTime))
	b.Enqueue(NewOrder(3, "ABC123", SELL, 10, 100, broker, sh, testTime))
	b.Enqueue(NewOrder(4, "ABC123", SELL, 10, 99, broker, sh, testTime))

	if got := queuedIDs(b, SELL); !sameIDs(got, []int64{2, 4, 1, 3}) {
		t.Errorf("sell queue order = %v, want [2 4 1 3]", got)
	}
}

func TestFindAndRemoveByOrderID(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)
	b.Enqueue(NewOrder(7, "ABC123", BUY, 10, 100, broker, sh, testTime))

	if o := b.FindByOrderID(BUY, 7); o == nil || o.OrderID != 7 {
		t.Fatalf("FindByOrderID(BUY, 7) = %+v", o)
	}
	if o := b.FindByOrderID(BUY, 8); o != nil {
		t.Errorf("FindByOrderID(BUY, 8) = %+v, want nil", o)
	}
	if !b.RemoveByOrderID(BUY, 7) {
		t.Fatal("RemoveByOrderID(BUY, 7) = false")
	}
	if b.RemoveByOrderID(BUY, 7) {
		t.Error("second RemoveByOrderID(BUY, 7) = true")
	}
	if b.Len(BUY) != 0 {
		t.Errorf("buy queue len = %d after removal", b.Len(BUY))
	}
}

func TestFirstLookupsSkipInactiveStopOrders(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)

	stop := NewStopOrder(1, "ABC123", SELL, 10, 90, broker, sh, testTime, 120)
	plain := NewOrder(2, "ABC123", SELL, 10, 95, broker, sh, testTime)
	b.Enqueue(stop)
	b.Enqueue(plain)

	// the stop order has the better price but is not yet triggered
	if got := queuedIDs(b, SELL); !sameIDs(got, []int64{1, 2}) {
		t.Fatalf("sell queue order = %v, want [1 2]", got)
	}
	first, ok := b.GetFirst(SELL)
	if !ok || first.OrderID != 2 {
		t.Errorf("GetFirst(SELL) = %+v, %v; want order 2", first, ok)
	}

	stop.Activate()
	first, ok = b.GetFirst(SELL)
	if !ok || first.OrderID != 1 {
		t.Errorf("GetFirst(SELL) after activation = %+v, %v; want order 1", first, ok)
	}
}

func TestGetFirstOnAllInactiveSide(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)
	b.Enqueue(NewStopOrder(1, "ABC123", BUY, 10, 100, broker, sh, testTime, 90))

	if _, ok := b.GetFirst(BUY); ok {
		t.Error("GetFirst(BUY) found an order on a side with only inactive stops")
	}
	if _, ok := b.RemoveFirst(BUY); ok {
		t.Error("RemoveFirst(BUY) popped an inactive stop order")
	}
	if b.Len(BUY) != 1 {
		t.Errorf("buy queue len = %d, want 1", b.Len(BUY))
	}
}

func TestPutBackRestoresFrontPosition(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh := NewShareholder(1)

	b.Enqueue(NewOrder(1, "ABC123", SELL, 10, 100, broker, sh, testTime))
	b.Enqueue(NewOrder(2, "ABC123", SELL, 10, 100, broker, sh, testTime))

	popped, _ := b.RemoveFirst(SELL)
	b.PutBack(popped)

	if got := queuedIDs(b, SELL); !sameIDs(got, []int64{1, 2}) {
		t.Errorf("sell queue order = %v, want [1 2]", got)
	}
}

func TestTotalSellQuantityByShareholder(t *testing.T) {
	b := NewOrderBook()
	broker := NewBroker(1, 0)
	sh1 := NewShareholder(1)
	sh2 := NewShareholder(2)

	b.Enqueue(NewOrder(1, "ABC123", SELL, 30, 100, broker, sh1, testTime))
	b.Enqueue(NewOrder(2, "ABC123", SELL, 20, 101, broker, sh2, testTime))
	b.Enqueue(NewOrder(3, "ABC123", SELL, 25, 102, broker, sh1, testTime))

	if got := b.TotalSellQuantityByShareholder(sh1); got != 55 {
		t.Errorf("TotalSellQuantityByShareholder(sh1) = %d, want 55", got)
	}
	if got := b.TotalSellQuantityByShareholder(sh2); got != 20 {
		t.Errorf("TotalSellQuantityByShareholder(sh2) = %d, want 20", got)
	}
}
