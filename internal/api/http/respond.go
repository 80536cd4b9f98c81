package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError translates the error taxonomy to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    insufficient.Error(),
			"balance":  insufficient.Balance,
			"required": insufficient.Required,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrPromptNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrInteractionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists),
		errors.Is(err, domain.ErrDuplicateInteraction),
		errors.Is(err, domain.ErrBalanceLimitExceeded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		var unavailable *storage.UnavailableError
		if errors.As(err, &unavailable) {
			logger.Error("Store unavailable", "error", err)
			writeError(w, http.StatusServiceUnavailable, "store unavailable, retry later")
			return
		}
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
