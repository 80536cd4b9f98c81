// Package http is the REST surface. Handlers decode and validate
// requests, delegate to the services, and translate domain errors to
// status codes; no business rules live here.
package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"fromprom-backend/internal/identity"
	"fromprom-backend/internal/service"
)

type Handler struct {
	users        service.UserService
	credits      service.CreditService
	purchases    service.PurchaseService
	prompts      service.PromptService
	interactions service.InteractionService
	resolver     identity.Resolver
	validate     *validator.Validate
}

func NewHandler(
	users service.UserService,
	credits service.CreditService,
	purchases service.PurchaseService,
	prompts service.PromptService,
	interactions service.InteractionService,
	resolver identity.Resolver,
) *Handler {
	return &Handler{
		users:        users,
		credits:      credits,
		purchases:    purchases,
		prompts:      prompts,
		interactions: interactions,
		resolver:     resolver,
		validate:     validator.New(),
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	// Authenticated routes register first: literal paths such as
	// /prompts/mine must win over the public {id} patterns below, and
	// mux matches in registration order.
	auth := r.PathPrefix("/api/v1").Subrouter()
	auth.Use(h.authenticate)

	auth.HandleFunc("/users", h.handleCreateAccount).Methods(http.MethodPost)
	auth.HandleFunc("/users/me", h.handleGetAccount).Methods(http.MethodGet)
	auth.HandleFunc("/users/me", h.handleUpdateProfile).Methods(http.MethodPatch)
	auth.HandleFunc("/users/me", h.handleWithdraw).Methods(http.MethodDelete)

	auth.HandleFunc("/credits/charge", h.handleCharge).Methods(http.MethodPost)
	auth.HandleFunc("/credits/spend", h.handleSpend).Methods(http.MethodPost)
	auth.HandleFunc("/credits/balance", h.handleBalance).Methods(http.MethodGet)
	auth.HandleFunc("/credits/history", h.handleHistory).Methods(http.MethodGet)
	auth.HandleFunc("/credits/purchases", h.handlePurchaseHistory).Methods(http.MethodGet)

	auth.HandleFunc("/purchases", h.handlePurchaseCart).Methods(http.MethodPost)
	auth.HandleFunc("/purchases/single", h.handlePurchaseSingle).Methods(http.MethodPost)

	auth.HandleFunc("/prompts", h.handleCreatePrompt).Methods(http.MethodPost)
	auth.HandleFunc("/prompts/mine", h.handleListMyPrompts).Methods(http.MethodGet)
	auth.HandleFunc("/prompts/{id}", h.handleUpdatePrompt).Methods(http.MethodPut)
	auth.HandleFunc("/prompts/{id}", h.handleDeletePrompt).Methods(http.MethodDelete)

	auth.HandleFunc("/prompts/{id}/likes", h.handleAddLike).Methods(http.MethodPost)
	auth.HandleFunc("/prompts/{id}/likes", h.handleRemoveLike).Methods(http.MethodDelete)
	auth.HandleFunc("/prompts/{id}/bookmarks", h.handleAddBookmark).Methods(http.MethodPost)
	auth.HandleFunc("/prompts/{id}/bookmarks", h.handleRemoveBookmark).Methods(http.MethodDelete)
	auth.HandleFunc("/me/likes", h.handleListMyLikes).Methods(http.MethodGet)
	auth.HandleFunc("/me/bookmarks", h.handleListMyBookmarks).Methods(http.MethodGet)
	auth.HandleFunc("/prompts/liked", h.handleLikedBatch).Methods(http.MethodPost)
	auth.HandleFunc("/prompts/bookmarked", h.handleBookmarkedBatch).Methods(http.MethodPost)

	auth.HandleFunc("/prompts/{id}/comments", h.handleAddComment).Methods(http.MethodPost)
	// Comment keys contain reserved characters, so updates and deletes
	// carry the key in the body instead of the path.
	auth.HandleFunc("/comments", h.handleUpdateComment).Methods(http.MethodPut)
	auth.HandleFunc("/comments", h.handleDeleteComment).Methods(http.MethodDelete)

	// Public read side. Requests that match none of the routes above
	// fall through to these.
	public := r.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/prompts/search", h.handleSearchPrompts).Methods(http.MethodGet)
	public.HandleFunc("/prompts/stats", h.handleStatsBatch).Methods(http.MethodPost)
	public.HandleFunc("/prompts/{id}", h.handleGetPrompt).Methods(http.MethodGet)
	public.HandleFunc("/prompts/{id}/comments", h.handleListComments).Methods(http.MethodGet)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
