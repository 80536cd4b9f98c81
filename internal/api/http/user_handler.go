package http

import (
	"net/http"
)

type createAccountRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Nickname string `json:"nickname" validate:"required,max=64"`
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	acct, err := h.users.CreateAccount(r.Context(), callerID(r), req.Email, req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.users.GetAccount(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type updateProfileRequest struct {
	Nickname string `json:"nickname" validate:"required,max=64"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.users.UpdateProfile(r.Context(), callerID(r), req.Nickname); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Withdraw(r.Context(), callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
