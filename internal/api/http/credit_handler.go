package http

import (
	"net/http"
	"strconv"
)

type chargeRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) handleCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.credits.Charge(r.Context(), callerID(r), req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type spendRequest struct {
	Amount      int    `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=256"`
}

func (h *Handler) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.credits.Spend(r.Context(), callerID(r), req.Amount, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.credits.GetBalance(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.credits.GetHistory(r.Context(), callerID(r), queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handlePurchaseHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.credits.GetPurchaseHistory(r.Context(), callerID(r), queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
