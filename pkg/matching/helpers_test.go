package matching

import (
	"testing"
	"time"
)

var testTime = time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)

func newTestSecurity() *Security {
	return NewSecurity("ABC123", 1, 1)
}

func queuedIDs(b *OrderBook, side Side) []int64 {
	var ids []int64
	for _, o := range b.Orders(side) {
		ids = append(ids, o.OrderID)
	}
	return ids
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func mustExecute(t *testing.T, s *Security, spec OrderSpec, broker *Broker, shareholder *Shareholder) *MatchResult {
	t.Helper()
	result := s.NewOrder(spec, broker, shareholder)
	if result.Outcome != OutcomeExecuted {
		t.Fatalf("order %d: expected EXECUTED, got %v", spec.OrderID, result.Outcome)
	}
	return result
}
