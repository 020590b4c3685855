package engine

import (
	"context"
	"testing"
	"time"

	eventstore "github.com/equitix/exchange-core/pkg/engine/event_store"
	"github.com/equitix/exchange-core/pkg/logging"
	"github.com/equitix/exchange-core/pkg/matching"
)

type capturingPublisher struct {
	events []Event
}

func (p *capturingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []Event {
	var out []Event
	for _, ev := range p.events {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}

var testEntryTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *capturingPublisher) {
	t.Helper()
	pub := &capturingPublisher{}
	e := New(pub, eventstore.NewInMemoryEventStore(), logging.NewLogger(logging.ERROR))

	e.Registry().AddSecurity(matching.NewSecurity("ABC123", 5, 10))
	e.Registry().AddBroker(matching.NewBroker(1, 100_000))
	e.Registry().AddBroker(matching.NewBroker(2, 0))
	buyer := matching.NewShareholder(1)
	seller := matching.NewShareholder(2)
	seller.IncPosition("ABC123", 1000)
	e.Registry().AddShareholder(buyer)
	e.Registry().AddShareholder(seller)
	return e, pub
}

func enter(t *testing.T, e *Engine, req *EnterOrderRequest) {
	t.Helper()
	if err := e.HandleEnterOrder(context.Background(), req); err != nil {
		t.Fatalf("HandleEnterOrder: %v", err)
	}
}

func TestNewOrderAcceptedAndExecuted(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.SELL, Quantity: 100, Price: 50,
		BrokerID: 2, ShareholderID: 2, EntryTime: testEntryTime,
	})
	enter(t, e, &EnterOrderRequest{
		RequestID: 2, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 2, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})

	accepted := pub.byType("ORDER_ACCEPTED")
	if len(accepted) != 2 {
		t.Fatalf("accepted events = %d, want 2", len(accepted))
	}
	executed := pub.byType("ORDER_EXECUTED")
	if len(executed) != 1 {
		t.Fatalf("executed events = %+v, want 1", executed)
	}
	ev := executed[0].(OrderExecutedEvent)
	if len(ev.Trades) != 1 || ev.Trades[0].Quantity != 100 || ev.Trades[0].Price != 50 {
		t.Errorf("trades = %+v, want one trade 100@50", ev.Trades)
	}
	if ev.Trades[0].BuyOrderID != 2 || ev.Trades[0].SellOrderID != 1 {
		t.Errorf("trade orders = %+v, want buy 2, sell 1", ev.Trades[0])
	}
}

func TestValidationCollectsAllReasons(t *testing.T) {
	e, pub := newTestEngine(t)

	// quantity off the lot of 10, price off the tick of 5
	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 7, Price: 3,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 {
		t.Fatalf("rejected events = %+v, want 1", rejected)
	}
	reasons := rejected[0].(OrderRejectedEvent).Reasons
	want := map[string]bool{ReasonQuantityNotLotMultiple: false, ReasonPriceNotTickMultiple: false}
	for _, r := range reasons {
		if _, ok := want[r]; ok {
			want[r] = true
		}
	}
	for reason, seen := range want {
		if !seen {
			t.Errorf("reasons = %v, missing %s", reasons, reason)
		}
	}
}

func TestUnknownReferencesRejected(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ZZZ999",
		OrderID: 1, Side: matching.BUY, Quantity: 10, Price: 5,
		BrokerID: 9, ShareholderID: 9, EntryTime: testEntryTime,
	})

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 {
		t.Fatalf("rejected events = %+v, want 1", rejected)
	}
	reasons := rejected[0].(OrderRejectedEvent).Reasons
	if len(reasons) != 3 {
		t.Errorf("reasons = %v, want unknown security, broker, shareholder", reasons)
	}
}

func TestStopOrderExcludesIcebergAndMinimumQuantity(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 1, ShareholderID: 1,
		StopPrice: 60, PeakSize: 10, MinimumExecutionQuantity: 10,
		EntryTime: testEntryTime,
	})

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 {
		t.Fatalf("rejected events = %+v, want 1", rejected)
	}
	reasons := rejected[0].(OrderRejectedEvent).Reasons
	want := map[string]bool{ReasonStopWithMinimumQuantity: false, ReasonStopWithPeakSize: false}
	for _, r := range reasons {
		if _, ok := want[r]; ok {
			want[r] = true
		}
	}
	for reason, seen := range want {
		if !seen {
			t.Errorf("reasons = %v, missing %s", reasons, reason)
		}
	}
}

func TestInsufficientCreditReportedAsRejection(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 2, ShareholderID: 1, EntryTime: testEntryTime,
	})

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 {
		t.Fatalf("rejected events = %+v, want 1", rejected)
	}
	reasons := rejected[0].(OrderRejectedEvent).Reasons
	if len(reasons) != 1 || reasons[0] != "NOT_ENOUGH_CREDIT" {
		t.Errorf("reasons = %v, want [NOT_ENOUGH_CREDIT]", reasons)
	}
}

func TestDeleteOrderPublishesDeletion(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})
	if err := e.HandleDeleteOrder(context.Background(), &DeleteOrderRequest{
		RequestID: 2, SecurityID: "ABC123", Side: matching.BUY, OrderID: 1,
	}); err != nil {
		t.Fatalf("HandleDeleteOrder: %v", err)
	}

	if deleted := pub.byType("ORDER_DELETED"); len(deleted) != 1 {
		t.Errorf("deleted events = %+v, want 1", deleted)
	}
	if e.Registry().Broker(1).Credit() != 100_000 {
		t.Errorf("credit = %d, want reservation released", e.Registry().Broker(1).Credit())
	}
}

func TestDeleteUnknownOrderRejected(t *testing.T) {
	e, pub := newTestEngine(t)

	if err := e.HandleDeleteOrder(context.Background(), &DeleteOrderRequest{
		RequestID: 1, SecurityID: "ABC123", Side: matching.SELL, OrderID: 42,
	}); err != nil {
		t.Fatalf("HandleDeleteOrder: %v", err)
	}

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 || rejected[0].(OrderRejectedEvent).Reasons[0] != ReasonOrderNotFound {
		t.Errorf("rejected = %+v, want ORDER_ID_NOT_FOUND", rejected)
	}
}

func TestAuctionModePublishesOpeningPrice(t *testing.T) {
	e, pub := newTestEngine(t)

	if err := e.HandleChangeMatchingState(context.Background(), &ChangeMatchingStateRequest{
		RequestID: 1, SecurityID: "ABC123", TargetState: matching.StateAuction,
	}); err != nil {
		t.Fatalf("HandleChangeMatchingState: %v", err)
	}
	if changed := pub.byType("SECURITY_STATE_CHANGED"); len(changed) != 1 {
		t.Fatalf("state change events = %+v, want 1", changed)
	}

	enter(t, e, &EnterOrderRequest{
		RequestID: 2, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.SELL, Quantity: 100, Price: 50,
		BrokerID: 2, ShareholderID: 2, EntryTime: testEntryTime,
	})
	enter(t, e, &EnterOrderRequest{
		RequestID: 3, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 2, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})

	opening := pub.byType("OPENING_PRICE")
	if len(opening) != 2 {
		t.Fatalf("opening price events = %+v, want one per entry", opening)
	}
	last := opening[1].(OpeningPriceEvent)
	if last.OpeningPrice != 50 || last.TradableQuantity != 100 {
		t.Errorf("opening = %+v, want 100 tradable at 50", last)
	}

	// leaving auction mode runs the sweep and announces its trades
	if err := e.HandleChangeMatchingState(context.Background(), &ChangeMatchingStateRequest{
		RequestID: 4, SecurityID: "ABC123", TargetState: matching.StateContinuous,
	}); err != nil {
		t.Fatalf("HandleChangeMatchingState: %v", err)
	}
	trades := pub.byType("TRADE")
	if len(trades) != 1 {
		t.Fatalf("trade events = %+v, want 1", trades)
	}
	tr := trades[0].(TradeEvent)
	if tr.Quantity != 100 || tr.Price != 50 {
		t.Errorf("trade = %+v, want 100@50", tr)
	}
}

func TestUpdateRejectionReasonMapping(t *testing.T) {
	e, pub := newTestEngine(t)

	enter(t, e, &EnterOrderRequest{
		RequestID: 1, Type: RequestTypeNew, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 100, Price: 50,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})
	enter(t, e, &EnterOrderRequest{
		RequestID: 2, Type: RequestTypeUpdate, SecurityID: "ABC123",
		OrderID: 1, Side: matching.BUY, Quantity: 100, Price: 50, StopPrice: 5,
		BrokerID: 1, ShareholderID: 1, EntryTime: testEntryTime,
	})

	rejected := pub.byType("ORDER_REJECTED")
	if len(rejected) != 1 {
		t.Fatalf("rejected events = %+v, want 1", rejected)
	}
	reasons := rejected[0].(OrderRejectedEvent).Reasons
	if len(reasons) != 1 || reasons[0] != ReasonStopPriceOnNonStop {
		t.Errorf("reasons = %v, want [%s]", reasons, ReasonStopPriceOnNonStop)
	}
}
