package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethodResponse is the wire form of a delivery method.
type DeliveryMethodResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	Carrier               string          `json:"carrier"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime,omitempty"`
	Price                 decimal.Decimal `json:"price"`
}

// DiscountResponse is the wire form of a discount.
type DiscountResponse struct {
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Usability   int             `json:"usability"`
}

// ListDeliveryMethods handles GET /delivery-methods: the full catalog a
// client can choose from at checkout.
func (h *Handler) ListDeliveryMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.deliveries.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]DeliveryMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, DeliveryMethodResponse{
			ID:                    m.ID,
			Name:                  m.Name,
			Description:           m.Description,
			Carrier:               m.Carrier,
			EstimatedDeliveryTime: m.EstimatedDeliveryTime,
			Price:                 m.Price,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDiscounts handles GET /discounts.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.discounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]DiscountResponse, 0, len(discounts))
	for _, d := range discounts {
		resp = append(resp, DiscountResponse{
			Code:        d.Code,
			Description: d.Description,
			Type:        string(d.Type),
			Value:       d.Value,
			StartDate:   d.StartDate,
			EndDate:     d.EndDate,
			Usability:   d.Usability,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
