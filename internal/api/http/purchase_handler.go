package http

import (
	"net/http"

	"fromprom-backend/internal/domain"
)

type cartItemRequest struct {
	PromptID string `json:"prompt_id" validate:"required"`
	SellerID string `json:"seller_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Price    int    `json:"price" validate:"required,gt=0"`
}

type purchaseCartRequest struct {
	Items []cartItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) handlePurchaseCart(w http.ResponseWriter, r *http.Request) {
	var req purchaseCartRequest
	if !h.decode(w, r, &req) {
		return
	}
	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem(item))
	}
	receipt, err := h.purchases.PurchaseCart(r.Context(), callerID(r), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handlePurchaseSingle(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	receipt, err := h.purchases.PurchaseSingle(r.Context(), callerID(r), domain.CartItem(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
