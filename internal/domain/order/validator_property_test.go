package order

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/xenking/parts-depot/internal/domain/part"
)

func genCatalog(t *rapid.T, minParts int) []part.Part {
	n := rapid.IntRange(minParts, 6).Draw(t, "parts")
	parts := make([]part.Part, n)
	for i := range parts {
		cents := rapid.Int64Range(1, 100_000).Draw(t, "cents")
		parts[i] = part.Part{
			ID:          int64(i + 1),
			Description: rapid.StringMatching(`[A-Z][a-z]{2,10}`).Draw(t, "description"),
			Price:       decimal.New(cents, -2),
			Quantity:    rapid.IntRange(0, 50).Draw(t, "quantity"),
		}
	}
	return parts
}

func genItems(t *rapid.T) []RequestedItem {
	return rapid.SliceOfN(rapid.Custom(func(t *rapid.T) RequestedItem {
		return RequestedItem{
			PartID:   rapid.Int64Range(0, 8).Draw(t, "partId"),
			Quantity: rapid.IntRange(-2, 30).Draw(t, "qty"),
		}
	}), 0, 8).Draw(t, "items")
}

func TestPlan_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		catalog := genCatalog(t, 0)
		items := genItems(t)

		p, err := plan(items, catalog)
		if err != nil {
			if !IsRejection(err) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}

		stock := make(map[int64]part.Part, len(catalog))
		for _, c := range catalog {
			stock[c.ID] = c
		}
		requested := make(map[int64]int)
		for _, item := range items {
			if item.Quantity <= 0 {
				t.Fatalf("accepted non-positive quantity %d", item.Quantity)
			}
			requested[item.PartID] += item.Quantity
		}

		for id, qty := range requested {
			c, ok := stock[id]
			if !ok {
				t.Fatalf("accepted unknown part %d", id)
			}
			if qty > c.Quantity {
				t.Fatalf("oversold part %d: %d > %d", id, qty, c.Quantity)
			}
			if got := p.remaining[id]; got != c.Quantity-qty {
				t.Fatalf("part %d remaining %d, want %d", id, got, c.Quantity-qty)
			}
		}
		if len(p.parts) != len(requested) {
			t.Fatalf("touched %d parts, want %d", len(p.parts), len(requested))
		}

		sum := decimal.Zero
		for i, line := range p.lines {
			want := line.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
			if !line.LineTotal.Equal(want) {
				t.Fatalf("line %d total %s, want %s", i, line.LineTotal, want)
			}
			sum = sum.Add(line.LineTotal)
		}
		if !Total(p.lines).Equal(sum.Round(2)) {
			t.Fatalf("total %s, want %s", Total(p.lines), sum)
		}
	})
}

func TestPlan_RejectsWhenOverStock(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		catalog := genCatalog(t, 1)
		target := rapid.SampledFrom(catalog).Draw(t, "target")
		over := target.Quantity + rapid.IntRange(1, 10).Draw(t, "over")

		_, err := plan([]RequestedItem{{PartID: target.ID, Quantity: over}}, catalog)
		var isErr *InsufficientStockError
		if err == nil || !errors.As(err, &isErr) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if isErr.Available != target.Quantity || isErr.Requested != over {
			t.Fatalf("unexpected error detail: %+v", isErr)
		}
	})
}
