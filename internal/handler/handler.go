// Package handler exposes the parts catalog and order placement over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/parts-depot/internal/domain/order"
	"github.com/xenking/parts-depot/internal/domain/part"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// OrderService is the order processor used by the handler.
type OrderService interface {
	PlaceOrder(ctx context.Context, items []order.RequestedItem) (*order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
}

// Handler serves the catalog and order endpoints. It is the only place where
// domain errors are turned into HTTP statuses.
type Handler struct {
	parts  part.Store
	orders OrderService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(parts part.Store, orders OrderService) *Handler {
	return &Handler{
		parts:  parts,
		orders: orders,
	}
}

// Register adds all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /parts", h.ListParts)
	mux.HandleFunc("POST /parts", h.CreatePart)
	mux.HandleFunc("GET /parts/{id}", h.GetPart)
	mux.HandleFunc("PUT /parts/{id}/quantity", h.UpdatePartQuantity)
	mux.HandleFunc("POST /orders", h.PlaceOrder)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
}
