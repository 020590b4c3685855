package engine

import (
	"sync"

	"github.com/equitix/exchange-core/pkg/matching"
)

// Registry holds the tradable universe. Securities, brokers and shareholders
// are registered at startup or via configuration requests; lookups during
// matching are read-only.
type Registry struct {
	mu           sync.RWMutex
	securities   map[string]*matching.Security
	brokers      map[int64]*matching.Broker
	shareholders map[int64]*matching.Shareholder
}

func NewRegistry() *Registry {
	return &Registry{
		securities:   make(map[string]*matching.Security),
		brokers:      make(map[int64]*matching.Broker),
		shareholders: make(map[int64]*matching.Shareholder),
	}
}

func (r *Registry) AddSecurity(s *matching.Security) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.securities[s.ISIN] = s
}

func (r *Registry) AddBroker(b *matching.Broker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers[b.BrokerID] = b
}

func (r *Registry) AddShareholder(sh *matching.Shareholder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shareholders[sh.ShareholderID] = sh
}

func (r *Registry) Security(isin string) *matching.Security {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.securities[isin]
}

func (r *Registry) Broker(id int64) *matching.Broker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.brokers[id]
}

func (r *Registry) Shareholder(id int64) *matching.Shareholder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shareholders[id]
}

func (r *Registry) Securities() []*matching.Security {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*matching.Security, 0, len(r.securities))
	for _, s := range r.securities {
		out = append(out, s)
	}
	return out
}
