package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order placement.
var (
	ErrEmptyOrder    = errors.New("order must contain at least one item")
	ErrOrderNotFound = errors.New("order not found")
)

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	PartID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for part %d, got %d", e.PartID, e.Quantity)
}

// PartNotFoundError indicates a line item referencing an unknown part.
type PartNotFoundError struct {
	PartID int64
}

func (e *PartNotFoundError) Error() string {
	return fmt.Sprintf("part %d not found", e.PartID)
}

// InsufficientStockError indicates a line item asking for more than is on hand.
type InsufficientStockError struct {
	PartID      int64
	Description string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %d (%s): requested %d, available %d",
		e.PartID, e.Description, e.Requested, e.Available)
}

// IsRejection reports whether err is a validation failure of the order
// itself, as opposed to a fault while reading or writing stock.
func IsRejection(err error) bool {
	if errors.Is(err, ErrEmptyOrder) {
		return true
	}
	var (
		iqErr  *InvalidQuantityError
		pnfErr *PartNotFoundError
		isErr  *InsufficientStockError
	)
	return errors.As(err, &iqErr) || errors.As(err, &pnfErr) || errors.As(err, &isErr)
}
