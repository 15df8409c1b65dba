package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/parts-depot/internal/domain/part"
)

// Validate resolves requested items against a stock snapshot without
// touching the store. Items are checked in input order and the first failure
// is returned. A part referenced by several items is checked against what
// remains after the earlier items.
func Validate(items []RequestedItem, snapshot []part.Part) ([]LineItem, error) {
	p, err := plan(items, snapshot)
	if err != nil {
		return nil, err
	}
	return p.lines, nil
}

// commitPlan is a validated order: its resolved lines and the quantity each
// touched part must be set to.
type commitPlan struct {
	lines     []LineItem
	parts     []int64 // touched part IDs, in first-seen order
	remaining map[int64]int
}

func plan(items []RequestedItem, snapshot []part.Part) (*commitPlan, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	byID := make(map[int64]part.Part, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
	}

	cp := &commitPlan{
		lines:     make([]LineItem, 0, len(items)),
		remaining: make(map[int64]int, len(items)),
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{PartID: item.PartID, Quantity: item.Quantity}
		}

		p, ok := byID[item.PartID]
		if !ok {
			return nil, &PartNotFoundError{PartID: item.PartID}
		}

		available, seen := cp.remaining[p.ID]
		if !seen {
			available = p.Quantity
		}
		if item.Quantity > available {
			return nil, &InsufficientStockError{
				PartID:      p.ID,
				Description: p.Description,
				Available:   available,
				Requested:   item.Quantity,
			}
		}
		if !seen {
			cp.parts = append(cp.parts, p.ID)
		}
		cp.remaining[p.ID] = available - item.Quantity

		cp.lines = append(cp.lines, LineItem{
			PartID:      p.ID,
			Quantity:    item.Quantity,
			Description: p.Description,
			Price:       p.Price,
			LineTotal:   p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}

	return cp, nil
}
