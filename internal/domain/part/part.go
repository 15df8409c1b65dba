package part

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested part does not exist.
var ErrNotFound = errors.New("part not found")

// InvalidInputError reports a part field that is missing or out of range.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Part is a catalog entry with its current stock on hand.
type Part struct {
	ID          int64
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// NewPart holds the caller-supplied fields of a part before an ID is assigned.
type NewPart struct {
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// Validate checks the fields required to create a part.
func (p NewPart) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return &InvalidInputError{Field: "description", Reason: "must not be empty"}
	}
	if !p.Price.IsPositive() {
		return &InvalidInputError{Field: "price", Reason: "must be a positive number"}
	}
	if p.Quantity < 0 {
		return &InvalidInputError{Field: "quantity", Reason: "must be a non-negative integer"}
	}
	return nil
}

// Tx is the view of the stock store available inside Store.Atomic.
type Tx interface {
	List(ctx context.Context) ([]Part, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*Part, error)
}

// Store owns the part catalog. All quantity changes go through
// UpdateQuantity, directly or inside Atomic.
type Store interface {
	Tx

	Get(ctx context.Context, id int64) (*Part, error)
	Create(ctx context.Context, p NewPart) (*Part, error)

	// Atomic runs fn with exclusive access to the store. If fn returns an
	// error, every quantity change made through tx is undone.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
