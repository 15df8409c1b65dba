// Package memory provides process-local implementations of the stock store
// and the order log. Nothing survives a restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/xenking/parts-depot/internal/domain/part"
)

var _ part.Store = (*PartStore)(nil)

// PartStore implements part.Store over a slice kept sorted by ID.
//
// A single mutex guards the catalog. Atomic holds it for the whole callback,
// so a snapshot taken inside Atomic cannot go stale before the commit.
type PartStore struct {
	mu    sync.Mutex
	parts []part.Part
}

// NewPartStore returns an empty PartStore.
func NewPartStore() *PartStore {
	return &PartStore{}
}

// List returns a copy of every part ordered by ID.
func (s *PartStore) List(ctx context.Context) ([]part.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

// Get returns a copy of the part with the given ID.
func (s *PartStore) Get(_ context.Context, id int64) (*part.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.find(id)
	if !ok {
		return nil, part.ErrNotFound
	}
	p := s.parts[i]
	return &p, nil
}

// UpdateQuantity sets the quantity on hand of a part.
func (s *PartStore) UpdateQuantity(ctx context.Context, id int64, quantity int) (*part.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateQuantity(ctx, id, quantity)
}

// Create validates p, assigns the next ID and appends it to the catalog.
func (s *PartStore) Create(_ context.Context, p part.NewPart) (*part.Part, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64 = 1
	if n := len(s.parts); n > 0 {
		id = s.parts[n-1].ID + 1
	}
	created := part.Part{
		ID:          id,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
	}
	s.parts = append(s.parts, created)
	return &created, nil
}

// Atomic runs fn while holding the store lock. Quantities are restored from
// a copy taken before fn unless fn returns nil, so an error or a panic in fn
// leaves the store untouched.
func (s *PartStore) Atomic(ctx context.Context, fn func(tx part.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	backup := slices.Clone(s.parts)
	committed := false
	defer func() {
		if !committed {
			s.parts = backup
		}
	}()

	if err := fn(lockedTx{s: s}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *PartStore) list(_ context.Context) ([]part.Part, error) {
	return slices.Clone(s.parts), nil
}

func (s *PartStore) updateQuantity(_ context.Context, id int64, quantity int) (*part.Part, error) {
	if quantity < 0 {
		return nil, &part.InvalidInputError{Field: "quantity", Reason: "must be a non-negative integer"}
	}

	i, ok := s.find(id)
	if !ok {
		return nil, part.ErrNotFound
	}
	s.parts[i].Quantity = quantity
	p := s.parts[i]
	return &p, nil
}

// find locates a part by ID. IDs are assigned in increasing order, so the
// slice stays sorted.
func (s *PartStore) find(id int64) (int, bool) {
	return slices.BinarySearchFunc(s.parts, id, func(p part.Part, id int64) int {
		return cmp.Compare(p.ID, id)
	})
}

// lockedTx exposes the store to an Atomic callback; the lock is already held.
type lockedTx struct {
	s *PartStore
}

func (tx lockedTx) List(ctx context.Context) ([]part.Part, error) {
	return tx.s.list(ctx)
}

func (tx lockedTx) UpdateQuantity(ctx context.Context, id int64, quantity int) (*part.Part, error) {
	return tx.s.updateQuantity(ctx, id, quantity)
}
