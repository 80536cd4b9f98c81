package service

import (
	"context"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/search"
)

type CreditService interface {
	// Charge adds self-service credit. Rejects with
	// domain.ErrBalanceLimitExceeded past the ceiling.
	Charge(ctx context.Context, userID string, amount int) (*domain.LedgerEntry, error)
	// Spend debits credit outside of a purchase.
	Spend(ctx context.Context, userID string, amount int, description string) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, userID string) (int, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)
	// GetPurchaseHistory returns only the purchase debit entries.
	GetPurchaseHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)

	// Ledger primitives. The purchase coordinator builds its flows on
	// these; entry carries the description and references, amount and
	// balance are filled in by the ledger.
	Credit(ctx context.Context, userID string, amount int, entry domain.LedgerEntry, policy domain.OverflowPolicy) (*domain.LedgerEntry, error)
	Debit(ctx context.Context, userID string, amount int, entry domain.LedgerEntry) (*domain.LedgerEntry, error)
}

type PurchaseService interface {
	PurchaseSingle(ctx context.Context, buyerID string, item domain.CartItem) (*domain.PurchaseReceipt, error)
	PurchaseCart(ctx context.Context, buyerID string, items []domain.CartItem) (*domain.PurchaseReceipt, error)
}

type InteractionService interface {
	Add(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error
	Remove(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error
	ListMine(ctx context.Context, userID string, kind domain.InteractionKind) ([]domain.Interaction, error)
	StatsBatch(ctx context.Context, promptIDs []string) (map[string]domain.PromptStats, error)
	InteractedBatch(ctx context.Context, userID string, kind domain.InteractionKind, promptIDs []string) (map[string]bool, error)

	AddComment(ctx context.Context, userID, promptID, content string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, userID, promptID, commentKey, content string) error
	DeleteComment(ctx context.Context, userID, promptID, commentKey string) error
	ListComments(ctx context.Context, promptID string) ([]domain.Comment, error)

	// ReconcileCounters recomputes every prompt's counters from the
	// backing records and returns how many prompts were repaired.
	ReconcileCounters(ctx context.Context) (int, error)
}

type PromptService interface {
	CreatePrompt(ctx context.Context, ownerID string, p *domain.Prompt) (*domain.Prompt, error)
	GetPrompt(ctx context.Context, promptID string) (*domain.Prompt, error)
	UpdatePrompt(ctx context.Context, ownerID string, p *domain.Prompt) error
	DeletePrompt(ctx context.Context, ownerID, promptID string) error
	ListMyPrompts(ctx context.Context, ownerID string) ([]domain.Prompt, error)
	SearchPrompts(ctx context.Context, query string, limit int) ([]search.Result, error)
}

type UserService interface {
	CreateAccount(ctx context.Context, userID, email, nickname string) (*domain.Account, error)
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, userID, nickname string) error
	// Withdraw hard-deletes the user and everything reachable from them.
	Withdraw(ctx context.Context, userID string) error
}

type CascadeService interface {
	// DeleteUser removes the user partition, their comments under other
	// prompts, and their listings with all attached rows. Individual row
	// failures are logged and skipped, never rolled back.
	DeleteUser(ctx context.Context, userID string) error
	DeletePrompt(ctx context.Context, ownerID, promptID string) error
}

type EmailService interface {
	SendSaleNotification(ctx context.Context, email, name string, promptTitles []string, amount int) error
}
