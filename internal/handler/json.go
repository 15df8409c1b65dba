package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/parts-depot/internal/domain/order"
	"github.com/xenking/parts-depot/internal/domain/part"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

func encodePart(e *jx.Encoder, p part.Part) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(p.Quantity) })
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					encodeLineItem(e, item)
				}
			})
		})
		e.Field("totalCost", func(e *jx.Encoder) { e.Num(jx.Num(o.TotalCost.StringFixed(2))) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339Nano)) })
	})
}

func encodeLineItem(e *jx.Encoder, item order.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("partId", func(e *jx.Encoder) { e.Int64(item.PartID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
		e.Field("description", func(e *jx.Encoder) { e.Str(item.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(item.Price.String())) })
		e.Field("lineTotal", func(e *jx.Encoder) { e.Num(jx.Num(item.LineTotal.StringFixed(2))) })
	})
}
