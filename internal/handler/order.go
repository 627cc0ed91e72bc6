package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/address"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/order"
)

// CheckoutRequest is the body of POST /orders.
type CheckoutRequest struct {
	ShippingAddress  address.Input `json:"shippingAddress"`
	BillingAddress   address.Input `json:"billingAddress"`
	DeliveryMethodID string        `json:"deliveryMethodId"`
	DiscountCode     string        `json:"discountCode,omitempty"`
}

// PaymentRequest is the body of POST /orders/{orderID}/payment, sent by the
// payment gateway callback after a confirmed charge.
type PaymentRequest struct {
	PaymentMethodID   string `json:"paymentMethodId"`
	PaymentMethodCode string `json:"paymentMethodCode"`
}

// PaymentView reports the bound payment method on an order.
type PaymentView struct {
	MethodID   string `json:"id"`
	MethodCode string `json:"code"`
	Status     string `json:"status"`
}

// OrderResponse is the wire form of an order.
type OrderResponse struct {
	ID               string            `json:"id"`
	Items            []cart.Item       `json:"items"`
	DeliveryMethodID string            `json:"deliveryMethodId"`
	Discount         *discount.Applied `json:"discount,omitempty"`
	ShippingAddress  address.Address   `json:"shippingAddress"`
	BillingAddress   address.Address   `json:"billingAddress"`
	GrandTotal       decimal.Decimal   `json:"grandTotal"`
	Status           string            `json:"status"`
	Payment          *PaymentView      `json:"payment,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		Items:            o.Items,
		DeliveryMethodID: o.DeliveryMethodID,
		Discount:         o.Discount,
		ShippingAddress:  o.ShippingAddress,
		BillingAddress:   o.BillingAddress,
		GrandTotal:       o.GrandTotal,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.Payment != nil {
		resp.Payment = &PaymentView{
			MethodID:   o.Payment.MethodID,
			MethodCode: o.Payment.MethodCode,
			Status:     string(o.PaymentStatus),
		}
	}
	return resp
}

// Checkout handles POST /orders: it converts the caller's cart into a priced
// pending order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.DeliveryMethodID == "" {
		writeBadRequest(w, "deliveryMethodId is required")
		return
	}

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		UserID:           userID,
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   req.BillingAddress,
		DeliveryMethodID: req.DeliveryMethodID,
		DiscountCode:     req.DiscountCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder handles GET /orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}

	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if o.UserID != userID {
		writeError(w, order.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /orders: all orders of the authenticated user.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}

	list, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteOrder handles DELETE /orders/{orderID}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}

	orderID := chi.URLParam(r, "orderID")
	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if o.UserID != userID {
		writeError(w, order.ErrNotFound)
		return
	}
	if err := h.orders.Delete(r.Context(), orderID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BindPayment handles POST /orders/{orderID}/payment.
func (h *Handler) BindPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.PaymentMethodID == "" || req.PaymentMethodCode == "" {
		writeBadRequest(w, "paymentMethodId and paymentMethodCode are required")
		return
	}

	o, err := h.orders.BindPayment(r.Context(), chi.URLParam(r, "orderID"), req.PaymentMethodID, req.PaymentMethodCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// AdvanceShipment handles POST /orders/{orderID}/ship.
func (h *Handler) AdvanceShipment(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.AdvanceShipment(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// AdvanceDelivery handles POST /orders/{orderID}/deliver.
func (h *Handler) AdvanceDelivery(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.AdvanceDelivery(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
