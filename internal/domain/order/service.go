package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/parts-depot/internal/domain/part"
)

// Outcome labels the terminal state of an order request.
type Outcome string

const (
	// OutcomeCommitted means stock was decremented and the order recorded.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRejected means validation failed and nothing was changed.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means a storage fault aborted the commit; stock was rolled back.
	OutcomeFailed Outcome = "failed"
)

const instrumentationName = "github.com/xenking/parts-depot/internal/domain/order"

// Service validates orders against live stock and commits them atomically.
type Service struct {
	parts  part.Store
	orders Repository

	tracer trace.Tracer
	placed metric.Int64Counter

	newID func() (uuid.UUID, error)
	now   func() time.Time
}

// NewService creates an order Service backed by the given stock store and
// order repository.
func NewService(
	parts part.Store,
	orders Repository,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Service, error) {
	placed, err := mp.Meter(instrumentationName).Int64Counter("orders.placed",
		metric.WithDescription("Order requests by outcome"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.placed counter")
	}

	return &Service{
		parts:  parts,
		orders: orders,
		tracer: tp.Tracer(instrumentationName),
		placed: placed,
		newID:  uuid.NewV7,
		now:    time.Now,
	}, nil
}

// PlaceOrder validates items against one stock snapshot and, if every item
// can be satisfied, applies all decrements and records the order. Validation
// failures are returned unchanged and leave stock untouched; a failure during
// commit rolls back every decrement already applied.
func (s *Service) PlaceOrder(ctx context.Context, items []RequestedItem) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder",
		trace.WithAttributes(attribute.Int("order.items", len(items))),
	)
	defer span.End()

	o, err := s.placeOrder(ctx, items)

	outcome := OutcomeCommitted
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("order.id", o.ID))
	case IsRejection(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, "order commit failed")
	}
	span.SetAttributes(attribute.String("order.outcome", string(outcome)))
	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))

	lg := zctx.From(ctx)
	switch outcome {
	case OutcomeCommitted:
		lg.Info("Order committed",
			zap.String("order_id", o.ID),
			zap.Int("items", len(o.Items)),
			zap.Stringer("total_cost", o.TotalCost),
		)
	case OutcomeRejected:
		lg.Debug("Order rejected", zap.Error(err))
	case OutcomeFailed:
		lg.Error("Order failed", zap.Error(err))
	}

	return o, err
}

func (s *Service) placeOrder(ctx context.Context, items []RequestedItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	id, err := s.newID()
	if err != nil {
		return nil, errors.Wrap(err, "generate order id")
	}

	var o *Order
	err = s.parts.Atomic(ctx, func(tx part.Tx) error {
		snapshot, err := tx.List(ctx)
		if err != nil {
			return errors.Wrap(err, "snapshot stock")
		}

		p, err := plan(items, snapshot)
		if err != nil {
			return err
		}

		for _, partID := range p.parts {
			if _, err := tx.UpdateQuantity(ctx, partID, p.remaining[partID]); err != nil {
				return errors.Wrapf(err, "commit stock for part %d", partID)
			}
		}

		o = &Order{
			ID:        id.String(),
			Items:     p.lines,
			TotalCost: Total(p.lines),
			CreatedAt: s.now().UTC(),
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "record order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// GetOrder returns a previously committed order.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return o, nil
}
