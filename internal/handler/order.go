package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/parts-depot/internal/catalog"
	"github.com/xenking/parts-depot/internal/domain/order"
)

const msgInvalidOrderFormat = "Invalid order format"

var errInvalidOrderFormat = errors.New("invalid order format")

// PlaceOrder decodes a [{partId, quantity}, ...] body, hands it to the order
// service and maps the result (or error) to a response.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidOrderFormat)
		return
	}

	items, err := decodeOrderRequest(data)
	if err != nil {
		zctx.From(r.Context()).Debug("Reject order body", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidOrderFormat)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), items)
	if err != nil {
		status, message := mapOrderError(err)
		if status == http.StatusInternalServerError {
			zctx.From(r.Context()).Error("Place order", zap.Error(err))
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// GetOrder returns a previously placed order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		zctx.From(r.Context()).Error("Get order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// mapOrderError converts order errors to a status and a client-facing
// message. Unknown errors become a generic 500; their text is never returned.
func mapOrderError(err error) (int, string) {
	if errors.Is(err, order.ErrEmptyOrder) {
		return http.StatusBadRequest, msgInvalidOrderFormat
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		return http.StatusBadRequest, msgInvalidOrderFormat
	}

	var pnfErr *order.PartNotFoundError
	if errors.As(err, &pnfErr) {
		return http.StatusNotFound, fmt.Sprintf("Part not found: %d", pnfErr.PartID)
	}

	var isErr *order.InsufficientStockError
	if errors.As(err, &isErr) {
		return http.StatusBadRequest, fmt.Sprintf("Insufficient quantity for %s", isErr.Description)
	}

	return http.StatusInternalServerError, "Failed to process order"
}

// decodeOrderRequest accepts only a non-empty array of objects carrying a
// positive integer partId and quantity.
func decodeOrderRequest(data []byte) ([]order.RequestedItem, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.Wrap(errInvalidOrderFormat, "body is not an array")
	}

	var items []order.RequestedItem
	if err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeRequestedItem(d)
		if err != nil {
			return errors.Wrapf(err, "item %d", len(items))
		}
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, err
	}
	if err := catalog.ExpectEOF(d); err != nil {
		return nil, errors.Wrap(errInvalidOrderFormat, err.Error())
	}

	if len(items) == 0 {
		return nil, errors.Wrap(errInvalidOrderFormat, "no items")
	}
	return items, nil
}

func decodeRequestedItem(d *jx.Decoder) (order.RequestedItem, error) {
	var (
		item                 order.RequestedItem
		hasPart, hasQuantity bool
	)
	if d.Next() != jx.Object {
		return item, errors.Wrap(errInvalidOrderFormat, "item is not an object")
	}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "partId":
			v, err := catalog.DecodeInt(d)
			if err != nil {
				return errors.Wrap(err, "partId")
			}
			item.PartID, hasPart = v, true
		case "quantity":
			v, err := catalog.DecodeCount(d)
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			item.Quantity, hasQuantity = v, true
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return item, err
	}

	switch {
	case !hasPart || item.PartID <= 0:
		return item, errors.Wrap(errInvalidOrderFormat, "partId must be a positive integer")
	case !hasQuantity || item.Quantity <= 0:
		return item, errors.Wrap(errInvalidOrderFormat, "quantity must be a positive integer")
	}
	return item, nil
}
