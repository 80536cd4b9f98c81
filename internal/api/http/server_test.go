package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "fromprom-backend/internal/api/http"
	"fromprom-backend/internal/events"
	"fromprom-backend/internal/identity"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/search"
	"fromprom-backend/internal/service"
	"fromprom-backend/internal/storage"
)

type testServer struct {
	router   http.Handler
	resolver *identity.JWTResolver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storage.NewMemoryStore()
	accountRepo := table.NewAccountRepository(store)
	promptRepo := table.NewPromptRepository(store)
	interactionRepo := table.NewInteractionRepository(store)
	commentRepo := table.NewCommentRepository(store)

	resolver := identity.NewJWTResolver("0123456789abcdef0123456789abcdef", time.Hour)

	emailSvc := service.NewSendGridEmailService("", "noreply@example.com", "Test")
	creditSvc := service.NewCreditService(accountRepo, 0, 50, 3)
	purchaseSvc := service.NewPurchaseService(creditSvc, accountRepo, emailSvc)
	cascadeSvc := service.NewCascadeService(store, promptRepo, interactionRepo, commentRepo)
	promptSvc := service.NewPromptService(promptRepo, events.NopPublisher{}, search.Disabled{}, cascadeSvc)
	interactionSvc := service.NewInteractionService(interactionRepo, commentRepo, promptRepo, accountRepo)
	userSvc := service.NewUserService(accountRepo, cascadeSvc)

	handler := httpapi.NewHandler(userSvc, creditSvc, purchaseSvc, promptSvc, interactionSvc, resolver)
	return &testServer{router: handler.Router(), resolver: resolver}
}

func (ts *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := ts.resolver.Issue(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/users", "u1", map[string]string{
		"email": "u1@example.com", "nickname": "Uno",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate registration conflicts.
	rec = ts.do(t, http.MethodPost, "/api/v1/users", "u1", map[string]string{
		"email": "u1@example.com", "nickname": "Uno",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid email is rejected before the service sees it.
	rec = ts.do(t, http.MethodPost, "/api/v1/users", "u2", map[string]string{
		"email": "not-an-email", "nickname": "Dos",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/users/me", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acct map[string]any
	decodeBody(t, rec, &acct)
	assert.Equal(t, "u1@example.com", acct["email"])
}

func TestCreditEndpoints(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/users", "u1", map[string]string{
		"email": "u1@example.com", "nickname": "Uno",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/credits/charge", "u1", map[string]int{"amount": 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/credits/charge", "u1", map[string]int{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Overspending reports both sides of the shortfall.
	rec = ts.do(t, http.MethodPost, "/api/v1/credits/spend", "u1", map[string]int{"amount": 5000})
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict map[string]any
	decodeBody(t, rec, &conflict)
	assert.EqualValues(t, 1000, conflict["balance"])
	assert.EqualValues(t, 5000, conflict["required"])

	rec = ts.do(t, http.MethodGet, "/api/v1/credits/balance", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance map[string]int
	decodeBody(t, rec, &balance)
	assert.Equal(t, 1000, balance["balance"])
}

func TestPromptAndInteractionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	for _, u := range []string{"owner", "fan"} {
		rec := ts.do(t, http.MethodPost, "/api/v1/users", u, map[string]string{
			"email": u + "@example.com", "nickname": u,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/prompts", "owner", map[string]any{
		"title": "Rewriter", "content": "Rewrite {{text}}", "price": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var prompt map[string]any
	decodeBody(t, rec, &prompt)
	promptID := prompt["prompt_id"].(string)
	require.NotEmpty(t, promptID)

	// Public read without a token.
	rec = ts.do(t, http.MethodGet, "/api/v1/prompts/"+promptID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/prompts/"+promptID+"/likes", "fan", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/v1/prompts/"+promptID+"/likes", "fan", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/prompts/stats", "", map[string]any{
		"prompt_ids": []string{promptID, "ghost"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]map[string]int
	decodeBody(t, rec, &stats)
	assert.Equal(t, 1, stats[promptID]["like_count"])
	assert.Equal(t, 0, stats["ghost"]["like_count"])

	// Only the owner can delete.
	rec = ts.do(t, http.MethodDelete, "/api/v1/prompts/"+promptID, "fan", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/v1/prompts/"+promptID, "owner", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/prompts/"+promptID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMyPromptsRoute(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/users", "owner", map[string]string{
		"email": "owner@example.com", "nickname": "Owner",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/prompts", "owner", map[string]any{
		"title": "Summarizer", "content": "Summarize {{text}}", "price": 50,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The literal path must reach the listing handler, not be swallowed
	// as a prompt id by the public read route.
	rec = ts.do(t, http.MethodGet, "/api/v1/prompts/mine", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	decodeBody(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "Summarizer", mine[0]["title"])

	rec = ts.do(t, http.MethodGet, "/api/v1/prompts/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPurchaseEndpoint(t *testing.T) {
	ts := newTestServer(t)
	for _, u := range []string{"buyer", "seller"} {
		rec := ts.do(t, http.MethodPost, "/api/v1/users", u, map[string]string{
			"email": u + "@example.com", "nickname": u,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/credits/charge", "buyer", map[string]int{"amount": 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/purchases", "buyer", map[string]any{
		"items": []map[string]any{
			{"prompt_id": "p1", "seller_id": "seller", "title": "One", "price": 400},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt map[string]any
	decodeBody(t, rec, &receipt)
	assert.EqualValues(t, 400, receipt["total"])
	assert.EqualValues(t, 600, receipt["buyer_balance"])

	rec = ts.do(t, http.MethodGet, "/api/v1/credits/balance", "seller", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance map[string]int
	decodeBody(t, rec, &balance)
	assert.Equal(t, 400, balance["balance"])

	rec = ts.do(t, http.MethodPost, "/api/v1/purchases", "buyer", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
