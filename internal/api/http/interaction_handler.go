package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fromprom-backend/internal/domain"
)

func (h *Handler) handleAddLike(w http.ResponseWriter, r *http.Request) {
	h.addInteraction(w, r, domain.InteractionLike)
}

func (h *Handler) handleRemoveLike(w http.ResponseWriter, r *http.Request) {
	h.removeInteraction(w, r, domain.InteractionLike)
}

func (h *Handler) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	h.addInteraction(w, r, domain.InteractionBookmark)
}

func (h *Handler) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	h.removeInteraction(w, r, domain.InteractionBookmark)
}

func (h *Handler) addInteraction(w http.ResponseWriter, r *http.Request, kind domain.InteractionKind) {
	err := h.interactions.Add(r.Context(), callerID(r), mux.Vars(r)["id"], kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handler) removeInteraction(w http.ResponseWriter, r *http.Request, kind domain.InteractionKind) {
	err := h.interactions.Remove(r.Context(), callerID(r), mux.Vars(r)["id"], kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleListMyLikes(w http.ResponseWriter, r *http.Request) {
	h.listMyInteractions(w, r, domain.InteractionLike)
}

func (h *Handler) handleListMyBookmarks(w http.ResponseWriter, r *http.Request) {
	h.listMyInteractions(w, r, domain.InteractionBookmark)
}

func (h *Handler) listMyInteractions(w http.ResponseWriter, r *http.Request, kind domain.InteractionKind) {
	records, err := h.interactions.ListMine(r.Context(), callerID(r), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type promptIDsRequest struct {
	PromptIDs []string `json:"prompt_ids" validate:"required,min=1,max=100,dive,required"`
}

func (h *Handler) handleStatsBatch(w http.ResponseWriter, r *http.Request) {
	var req promptIDsRequest
	if !h.decode(w, r, &req) {
		return
	}
	stats, err := h.interactions.StatsBatch(r.Context(), req.PromptIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleLikedBatch(w http.ResponseWriter, r *http.Request) {
	h.interactedBatch(w, r, domain.InteractionLike)
}

func (h *Handler) handleBookmarkedBatch(w http.ResponseWriter, r *http.Request) {
	h.interactedBatch(w, r, domain.InteractionBookmark)
}

func (h *Handler) interactedBatch(w http.ResponseWriter, r *http.Request, kind domain.InteractionKind) {
	var req promptIDsRequest
	if !h.decode(w, r, &req) {
		return
	}
	flags, err := h.interactions.InteractedBatch(r.Context(), callerID(r), kind, req.PromptIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	comment, err := h.interactions.AddComment(r.Context(), callerID(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.interactions.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type updateCommentRequest struct {
	PromptID   string `json:"prompt_id" validate:"required"`
	CommentKey string `json:"comment_key" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
}

func (h *Handler) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.interactions.UpdateComment(r.Context(), callerID(r), req.PromptID, req.CommentKey, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type deleteCommentRequest struct {
	PromptID   string `json:"prompt_id" validate:"required"`
	CommentKey string `json:"comment_key" validate:"required"`
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	var req deleteCommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.interactions.DeleteComment(r.Context(), callerID(r), req.PromptID, req.CommentKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
