package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/parts-depot/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore keeps committed orders in memory, keyed by ID.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderStore returns an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]order.Order)}
}

// Create stores a copy of o. IDs must be unique.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return errors.Errorf("order %s already exists", o.ID)
	}
	stored := *o
	stored.Items = slices.Clone(o.Items)
	s.orders[o.ID] = stored
	return nil
}

// GetByID returns a copy of the stored order.
func (s *OrderStore) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Items = slices.Clone(o.Items)
	return &o, nil
}
