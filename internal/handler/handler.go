// Package handler is the thin HTTP layer over the checkout core: it decodes
// requests, delegates to the order service, and maps domain errors to
// transport codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/delivery"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/order"
)

// Handler exposes the order and catalog endpoints.
type Handler struct {
	orders     *order.Service
	deliveries delivery.Catalog
	discounts  discount.Store
}

// NewHandler constructs a Handler around the order service and the
// read-only catalogs.
func NewHandler(orders *order.Service, deliveries delivery.Catalog, discounts discount.Store) *Handler {
	return &Handler{orders: orders, deliveries: deliveries, discounts: discounts}
}

// Routes registers the endpoints on the router. The security middleware
// must already be mounted; every handler assumes an authenticated user id
// in the request context.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.Checkout)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{orderID}", h.GetOrder)
	r.Delete("/orders/{orderID}", h.DeleteOrder)
	r.Post("/orders/{orderID}/payment", h.BindPayment)
	r.Post("/orders/{orderID}/ship", h.AdvanceShipment)
	r.Post("/orders/{orderID}/deliver", h.AdvanceDelivery)
	r.Get("/delivery-methods", h.ListDeliveryMethods)
	r.Get("/discounts", h.ListDiscounts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
