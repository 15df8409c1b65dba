package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a committed purchase. It is never modified after creation.
type Order struct {
	ID        string
	Items     []LineItem
	TotalCost decimal.Decimal
	CreatedAt time.Time
}

// RequestedItem is one entry of an incoming order request.
type RequestedItem struct {
	PartID   int64
	Quantity int
}

// LineItem is a resolved order line. Description and Price are copies taken
// at order time.
type LineItem struct {
	PartID      int64
	Quantity    int
	Description string
	Price       decimal.Decimal
	LineTotal   decimal.Decimal
}

// Total sums line totals rounded to cents.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total.Round(2)
}

// Repository keeps committed orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
}
