package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/parts-depot/internal/catalog"
	"github.com/xenking/parts-depot/internal/domain/part"
)

// ListParts returns every part in the catalog.
func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("List parts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch parts")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range parts {
				encodePart(e, p)
			}
		})
	})
}

// GetPart returns a single part by ID.
func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, ok := partID(w, r)
	if !ok {
		return
	}

	p, err := h.parts.Get(r.Context(), id)
	if err != nil {
		h.writePartError(w, r, id, err, "Failed to fetch part")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePart(e, *p) })
}

// CreatePart adds a part to the catalog.
func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d := jx.DecodeBytes(data)
	np, err := catalog.DecodePart(d)
	if err == nil {
		err = catalog.ExpectEOF(d)
	}
	if err != nil {
		var ie *part.InvalidInputError
		switch {
		case errors.As(err, &ie) && ie.Reason == catalog.ReasonRequired:
			writeError(w, http.StatusBadRequest, "Missing required fields")
		case errors.As(err, &ie):
			writeError(w, http.StatusBadRequest, ie.Error())
		default:
			writeError(w, http.StatusBadRequest, "Invalid request body")
		}
		return
	}

	p, err := h.parts.Create(r.Context(), np)
	if err != nil {
		var ie *part.InvalidInputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		zctx.From(r.Context()).Error("Create part", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create part")
		return
	}

	zctx.From(r.Context()).Info("Part created",
		zap.Int64("part_id", p.ID),
		zap.String("description", p.Description),
	)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodePart(e, *p) })
}

// UpdatePartQuantity sets the quantity on hand of a part, e.g. after a
// restock. The body is {"quantity": n}.
func (h *Handler) UpdatePartQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := partID(w, r)
	if !ok {
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		quantity int
		found    bool
	)
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := catalog.DecodeCount(d)
		if err != nil {
			return err
		}
		quantity, found = v, true
		return nil
	})
	if err == nil {
		err = catalog.ExpectEOF(d)
	}
	if err != nil || !found {
		writeError(w, http.StatusBadRequest, "Quantity must be a non-negative integer")
		return
	}

	p, err := h.parts.UpdateQuantity(r.Context(), id, quantity)
	if err != nil {
		h.writePartError(w, r, id, err, "Failed to update part")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePart(e, *p) })
}

func (h *Handler) writePartError(w http.ResponseWriter, r *http.Request, id int64, err error, fallback string) {
	var ie *part.InvalidInputError
	switch {
	case errors.Is(err, part.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Part not found: %d", id))
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	default:
		zctx.From(r.Context()).Error(fallback, zap.Int64("part_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func partID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid part id")
		return 0, false
	}
	return id, true
}
