package matching

import "testing"

func TestFullMatchTransfersCreditAndPositions(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 1000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 100)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 100, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := mustExecute(t, s, OrderSpec{OrderID: 2, Side: BUY, Quantity: 100, Price: 10, EntryTime: testTime}, buyBroker, buyer)

	if len(result.Trades) != 1 || result.Trades[0].Quantity != 100 || result.Trades[0].Price != 10 {
		t.Fatalf("trades = %+v, want one trade of 100 at 10", result.Trades)
	}
	if buyBroker.Credit() != 0 {
		t.Errorf("buyer credit = %d, want 0", buyBroker.Credit())
	}
	if sellBroker.Credit() != 1000 {
		t.Errorf("seller credit = %d, want 1000", sellBroker.Credit())
	}
	if buyer.PositionOn(s.ISIN) != 100 || seller.PositionOn(s.ISIN) != 0 {
		t.Errorf("positions = buyer %d, seller %d; want 100, 0", buyer.PositionOn(s.ISIN), seller.PositionOn(s.ISIN))
	}
	if s.Book.Len(BUY) != 0 || s.Book.Len(SELL) != 0 {
		t.Errorf("book not empty: buy %d, sell %d", s.Book.Len(BUY), s.Book.Len(SELL))
	}
}

func TestPartialMatchQueuesRemainderWithReservedCredit(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 2000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 50)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 50, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := mustExecute(t, s, OrderSpec{OrderID: 2, Side: BUY, Quantity: 120, Price: 10, EntryTime: testTime}, buyBroker, buyer)

	if len(result.Trades) != 1 || result.Trades[0].Quantity != 50 {
		t.Fatalf("trades = %+v, want one trade of 50", result.Trades)
	}
	if result.Remainder == nil || result.Remainder.Quantity != 70 {
		t.Fatalf("remainder = %+v, want quantity 70", result.Remainder)
	}
	// 500 paid for the trade, 700 reserved for the resting remainder
	if buyBroker.Credit() != 800 {
		t.Errorf("buyer credit = %d, want 800", buyBroker.Credit())
	}
	rest := s.Book.FindByOrderID(BUY, 2)
	if rest == nil || rest.Quantity != 70 {
		t.Errorf("resting remainder = %+v, want quantity 70", rest)
	}
}

func TestMatchConsumesPriceLevelsInOrder(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 2000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 100)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 50, Price: 12, EntryTime: testTime}, sellBroker, seller)
	mustExecute(t, s, OrderSpec{OrderID: 2, Side: SELL, Quantity: 50, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := mustExecute(t, s, OrderSpec{OrderID: 3, Side: BUY, Quantity: 100, Price: 12, EntryTime: testTime}, buyBroker, buyer)

	if len(result.Trades) != 2 {
		t.Fatalf("trades = %+v, want 2", result.Trades)
	}
	if result.Trades[0].Price != 10 || result.Trades[1].Price != 12 {
		t.Errorf("trade prices = %d, %d; want 10 then 12", result.Trades[0].Price, result.Trades[1].Price)
	}
	if buyBroker.Credit() != 2000-500-600 {
		t.Errorf("buyer credit = %d, want 900", buyBroker.Credit())
	}
}

func TestEqualPricedRestingOrdersFillInArrivalOrder(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 1000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 80)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 40, Price: 10, EntryTime: testTime}, sellBroker, seller)
	mustExecute(t, s, OrderSpec{OrderID: 2, Side: SELL, Quantity: 40, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := mustExecute(t, s, OrderSpec{OrderID: 3, Side: BUY, Quantity: 60, Price: 10, EntryTime: testTime}, buyBroker, buyer)

	if len(result.Trades) != 2 {
		t.Fatalf("trades = %+v, want 2", result.Trades)
	}
	if result.Trades[0].Sell.OrderID != 1 || result.Trades[1].Sell.OrderID != 2 {
		t.Errorf("fill order = %d, %d; want 1 then 2", result.Trades[0].Sell.OrderID, result.Trades[1].Sell.OrderID)
	}
	if got := queuedIDs(s.Book, SELL); !sameIDs(got, []int64{2}) {
		t.Errorf("sell queue = %v, want [2]", got)
	}
}

func TestInsufficientCreditOnFirstTradeLeavesBookUntouched(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 900)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 100)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 100, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := s.NewOrder(OrderSpec{OrderID: 2, Side: BUY, Quantity: 120, Price: 10, EntryTime: testTime}, buyBroker, buyer)

	if result.Outcome != OutcomeNotEnoughCredit {
		t.Fatalf("outcome = %v, want NOT_ENOUGH_CREDIT", result.Outcome)
	}
	if buyBroker.Credit() != 900 || sellBroker.Credit() != 0 {
		t.Errorf("credits = %d, %d; want 900, 0", buyBroker.Credit(), sellBroker.Credit())
	}
	rest := s.Book.FindByOrderID(SELL, 1)
	if rest == nil || rest.Quantity != 100 {
		t.Errorf("resting sell = %+v, want quantity 100", rest)
	}
	if s.Book.Len(BUY) != 0 {
		t.Errorf("buy queue len = %d, want 0", s.Book.Len(BUY))
	}
}

func TestInsufficientCreditMidMatchRollsBackEarlierTrades(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 1000)
	sellBroker1 := NewBroker(2, 0)
	sellBroker2 := NewBroker(3, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 110)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 50, Price: 10, EntryTime: testTime}, sellBroker1, seller)
	mustExecute(t, s, OrderSpec{OrderID: 2, Side: SELL, Quantity: 60, Price: 11, EntryTime: testTime}, sellBroker2, seller)

	// first trade costs 500, second would cost 660 with only 500 left
	result := s.NewOrder(OrderSpec{OrderID: 3, Side: BUY, Quantity: 120, Price: 11, EntryTime: testTime}, buyBroker, buyer)

	if result.Outcome != OutcomeNotEnoughCredit {
		t.Fatalf("outcome = %v, want NOT_ENOUGH_CREDIT", result.Outcome)
	}
	if buyBroker.Credit() != 1000 || sellBroker1.Credit() != 0 || sellBroker2.Credit() != 0 {
		t.Errorf("credits = %d, %d, %d; want all restored", buyBroker.Credit(), sellBroker1.Credit(), sellBroker2.Credit())
	}
	if got := queuedIDs(s.Book, SELL); !sameIDs(got, []int64{1, 2}) {
		t.Fatalf("sell queue = %v, want [1 2]", got)
	}
	if o := s.Book.FindByOrderID(SELL, 1); o.Quantity != 50 {
		t.Errorf("restored sell quantity = %d, want 50", o.Quantity)
	}
}

func TestInsufficientCreditForRemainderRollsBack(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 700)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 50)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 50, Price: 10, EntryTime: testTime}, sellBroker, seller)

	// the trade costs 500 but the 50-unit remainder needs another 500
	result := s.NewOrder(OrderSpec{OrderID: 2, Side: BUY, Quantity: 100, Price: 10, EntryTime: testTime}, buyBroker, buyer)

	if result.Outcome != OutcomeNotEnoughCredit {
		t.Fatalf("outcome = %v, want NOT_ENOUGH_CREDIT", result.Outcome)
	}
	if buyBroker.Credit() != 700 || sellBroker.Credit() != 0 {
		t.Errorf("credits = %d, %d; want 700, 0", buyBroker.Credit(), sellBroker.Credit())
	}
	if o := s.Book.FindByOrderID(SELL, 1); o == nil || o.Quantity != 50 {
		t.Errorf("restored sell = %+v, want quantity 50", o)
	}
}

func TestMinimumQuantityUnmetUndoesWholeAttempt(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 2000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 30)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 10, Price: 10, EntryTime: testTime}, sellBroker, seller)
	mustExecute(t, s, OrderSpec{OrderID: 2, Side: SELL, Quantity: 20, Price: 10, EntryTime: testTime}, sellBroker, seller)

	result := s.NewOrder(OrderSpec{OrderID: 3, Side: BUY, Quantity: 120, Price: 10, MinimumExecutionQuantity: 50, EntryTime: testTime}, buyBroker, buyer)

	if result.Outcome != OutcomeMinQuantityFailed {
		t.Fatalf("outcome = %v, want MIN_QTY_FAILED", result.Outcome)
	}
	if buyBroker.Credit() != 2000 || sellBroker.Credit() != 0 {
		t.Errorf("credits = %d, %d; want 2000, 0", buyBroker.Credit(), sellBroker.Credit())
	}
	if buyer.PositionOn(s.ISIN) != 0 || seller.PositionOn(s.ISIN) != 30 {
		t.Errorf("positions = %d, %d; want 0, 30", buyer.PositionOn(s.ISIN), seller.PositionOn(s.ISIN))
	}
	if got := queuedIDs(s.Book, SELL); !sameIDs(got, []int64{1, 2}) {
		t.Errorf("sell queue = %v, want [1 2]", got)
	}
	if s.Book.Len(BUY) != 0 {
		t.Errorf("buy queue len = %d, want 0", s.Book.Len(BUY))
	}
}

func TestMinimumQuantityMetExecutesNormally(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 2000)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 60)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: SELL, Quantity: 60, Price: 10, EntryTime: testTime}, sellBroker, seller)
	result := s.NewOrder(OrderSpec{OrderID: 2, Side: BUY, Quantity: 100, Price: 10, MinimumExecutionQuantity: 50, EntryTime: testTime}, buyBroker, buyer)

	if result.Outcome != OutcomeExecuted || len(result.Trades) != 1 || result.Trades[0].Quantity != 60 {
		t.Fatalf("result = %+v, want EXECUTED with one trade of 60", result)
	}
	if o := s.Book.FindByOrderID(BUY, 2); o == nil || o.Quantity != 40 {
		t.Errorf("resting remainder = %+v, want quantity 40", o)
	}
}

func TestMinimumQuantityRollbackForSellAggressor(t *testing.T) {
	s := newTestSecurity()
	buyBroker := NewBroker(1, 400)
	sellBroker := NewBroker(2, 0)
	buyer := NewShareholder(1)
	seller := NewShareholder(2)
	seller.IncPosition(s.ISIN, 100)

	mustExecute(t, s, OrderSpec{OrderID: 1, Side: BUY, Quantity: 40, Price: 10, EntryTime: testTime}, buyBroker, buyer)
	if buyBroker.Credit() != 0 {
		t.Fatalf("buyer credit after resting = %d, want 0", buyBroker.Credit())
	}

	result := s.NewOrder(OrderSpec{OrderID: 2, Side: SELL, Quantity: 100, Price: 10, MinimumExecutionQuantity: 60, EntryTime: testTime}, sellBroker, seller)

	if result.Outcome != OutcomeMinQuantityFailed {
		t.Fatalf("outcome = %v, want MIN_QTY_FAILED", result.Outcome)
	}
	// the resting buy keeps its reservation; nobody's balance moves
	if buyBroker.Credit() != 0 || sellBroker.Credit() != 0 {
		t.Errorf("credits = %d, %d; want 0, 0", buyBroker.Credit(), sellBroker.Credit())
	}
	if o := s.Book.FindByOrderID(BUY, 1); o == nil || o.Quantity != 40 {
		t.Errorf("restored buy = %+v, want quantity 40", o)
	}
	if s.Book.Len(SELL) != 0 {
		t.Errorf("sell queue len = %d, want 0", s.Book.Len(SELL))
	}
	if buyer.PositionOn(s.ISIN) != 0 || seller.PositionOn(s.ISIN) != 100 {
		t.Errorf("positions = %d, %d; want 0, 100", buyer.PositionOn(s.ISIN), seller.PositionOn(s.ISIN))
	}
}
