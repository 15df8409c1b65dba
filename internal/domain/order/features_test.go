package order_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/parts-depot/internal/domain/order"
	"github.com/xenking/parts-depot/internal/domain/part"
	"github.com/xenking/parts-depot/internal/storage/memory"
)

type orderScenario struct {
	parts   *memory.PartStore
	svc     *order.Service
	placed  *order.Order
	created *part.Part
	err     error
}

func (s *orderScenario) reset() error {
	s.parts = memory.NewPartStore()
	svc, err := order.NewService(s.parts, memory.NewOrderStore(), tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	if err != nil {
		return err
	}
	s.svc, s.placed, s.created, s.err = svc, nil, nil, nil
	return nil
}

func (s *orderScenario) theCatalog(ctx context.Context, table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		price, err := decimal.NewFromString(row.Cells[1].Value)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		if _, err := s.parts.Create(ctx, part.NewPart{
			Description: row.Cells[0].Value,
			Price:       price,
			Quantity:    qty,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderScenario) iOrder(ctx context.Context, table *godog.Table) error {
	var items []order.RequestedItem
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		items = append(items, order.RequestedItem{PartID: id, Quantity: qty})
	}
	s.placed, s.err = s.svc.PlaceOrder(ctx, items)
	return nil
}

func (s *orderScenario) iPlaceAnEmptyOrder(ctx context.Context) error {
	s.placed, s.err = s.svc.PlaceOrder(ctx, []order.RequestedItem{})
	return nil
}

func (s *orderScenario) iCreatePart(ctx context.Context, description, price string, qty int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	s.created, err = s.parts.Create(ctx, part.NewPart{Description: description, Price: p, Quantity: qty})
	return err
}

func (s *orderScenario) committedWithTotal(total string) error {
	if s.err != nil {
		return errors.Wrap(s.err, "expected commit")
	}
	if got := s.placed.TotalCost.StringFixed(2); got != total {
		return errors.Errorf("total cost %s, want %s", got, total)
	}
	return nil
}

func (s *orderScenario) lineIs(n, qty int, description, price, lineTotal string) error {
	if s.placed == nil || n > len(s.placed.Items) {
		return errors.Errorf("order has no line %d", n)
	}
	line := s.placed.Items[n-1]
	switch {
	case line.Quantity != qty:
		return errors.Errorf("quantity %d, want %d", line.Quantity, qty)
	case line.Description != description:
		return errors.Errorf("description %q, want %q", line.Description, description)
	case line.Price.StringFixed(2) != price:
		return errors.Errorf("price %s, want %s", line.Price.StringFixed(2), price)
	case line.LineTotal.StringFixed(2) != lineTotal:
		return errors.Errorf("line total %s, want %s", line.LineTotal.StringFixed(2), lineTotal)
	}
	return nil
}

func (s *orderScenario) partHasInStock(ctx context.Context, id int64, qty int) error {
	p, err := s.parts.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Quantity != qty {
		return errors.Errorf("part %d has %d in stock, want %d", id, p.Quantity, qty)
	}
	return nil
}

func (s *orderScenario) rejectedInsufficient(description string) error {
	var isErr *order.InsufficientStockError
	if !errors.As(s.err, &isErr) {
		return errors.Errorf("expected insufficient stock, got %v", s.err)
	}
	if isErr.Description != description {
		return errors.Errorf("insufficient stock of %q, want %q", isErr.Description, description)
	}
	return nil
}

func (s *orderScenario) rejectedNotFound(id int64) error {
	var pnfErr *order.PartNotFoundError
	if !errors.As(s.err, &pnfErr) || pnfErr.PartID != id {
		return errors.Errorf("expected part %d not found, got %v", id, s.err)
	}
	return nil
}

func (s *orderScenario) rejectedMalformed() error {
	if !errors.Is(s.err, order.ErrEmptyOrder) {
		return errors.Errorf("expected empty order error, got %v", s.err)
	}
	return nil
}

func (s *orderScenario) createdHasID(id int64) error {
	if s.created == nil || s.created.ID != id {
		return errors.Errorf("created part %+v, want id %d", s.created, id)
	}
	return nil
}

func (s *orderScenario) storedLinePriced(ctx context.Context, n int, price string) error {
	if s.placed == nil {
		return errors.Wrap(s.err, "no order placed")
	}
	stored, err := s.svc.GetOrder(ctx, s.placed.ID)
	if err != nil {
		return err
	}
	if got := stored.Items[n-1].Price.StringFixed(2); got != price {
		return errors.Errorf("stored price %s, want %s", got, price)
	}
	return nil
}

func initializeOrderScenario(ctx *godog.ScenarioContext) {
	s := &orderScenario{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.reset()
	})

	ctx.Step(`^the catalog:$`, s.theCatalog)

	ctx.Step(`^I order:$`, s.iOrder)
	ctx.Step(`^I place an empty order$`, s.iPlaceAnEmptyOrder)
	ctx.Step(`^I create part "([^"]*)" priced "([^"]*)" with (\d+) in stock$`, s.iCreatePart)

	ctx.Step(`^the order is committed with total cost "([^"]*)"$`, s.committedWithTotal)
	ctx.Step(`^line (\d+) is (\d+) x "([^"]*)" at "([^"]*)" totalling "([^"]*)"$`, s.lineIs)
	ctx.Step(`^part (\d+) has (\d+) in stock$`, s.partHasInStock)
	ctx.Step(`^the order is rejected for insufficient stock of "([^"]*)"$`, s.rejectedInsufficient)
	ctx.Step(`^the order is rejected because part (\d+) was not found$`, s.rejectedNotFound)
	ctx.Step(`^the order is rejected as malformed$`, s.rejectedMalformed)
	ctx.Step(`^the created part has id (\d+)$`, s.createdHasID)
	ctx.Step(`^the stored order has line (\d+) priced "([^"]*)"$`, s.storedLinePriced)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeOrderScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/place_order.feature"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
