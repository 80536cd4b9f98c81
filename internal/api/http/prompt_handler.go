package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fromprom-backend/internal/domain"
)

type promptRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Content     string   `json:"content" validate:"required"`
	Price       int      `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"max=64"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=32"`
}

func (h *Handler) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !h.decode(w, r, &req) {
		return
	}
	prompt, err := h.prompts.CreatePrompt(r.Context(), callerID(r), &domain.Prompt{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Price:       req.Price,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prompt)
}

func (h *Handler) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.prompts.GetPrompt(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

func (h *Handler) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.prompts.UpdatePrompt(r.Context(), callerID(r), &domain.Prompt{
		PromptID:    mux.Vars(r)["id"],
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Price:       req.Price,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.DeletePrompt(r.Context(), callerID(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListMyPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.ListMyPrompts(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (h *Handler) handleSearchPrompts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	results, err := h.prompts.SearchPrompts(r.Context(), query, queryLimit(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
