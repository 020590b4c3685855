package eventstore

import (
	"fmt"
	"sync"

	"github.com/equitix/exchange-core/pkg/engine/model"
)

type InMemoryEventStore struct {
	mu              sync.RWMutex
	orders          map[string][]*model.OrderEvent
	latestRequestID map[string]int64
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		orders:          make(map[string][]*model.OrderEvent),
		latestRequestID: make(map[string]int64),
	}
}

func orderKey(securityID string, orderID int64) string {
	return fmt.Sprintf("%s:%d", securityID, orderID)
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := orderKey(ev.SecurityID, ev.OrderID)
	s.orders[key] = append(s.orders[key], ev)
	s.latestRequestID[key] = ev.RequestID
}

func (s *InMemoryEventStore) GetEvents(securityID string, orderID int64) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.orders[orderKey(securityID, orderID)]
	out := make([]*model.OrderEvent, len(events))
	copy(out, events)
	return out
}

func (s *InMemoryEventStore) GetLatestRequestID(securityID string, orderID int64) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestRequestID[orderKey(securityID, orderID)]
}
