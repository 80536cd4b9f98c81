package repository

import (
	"context"

	"fromprom-backend/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, acct *domain.Account) error
	Get(ctx context.Context, userID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, userID, nickname string) error

	// ApplyBalanceChange writes the new balance and appends the ledger
	// entry as one atomic group, conditioned on the balance still being
	// prevBalance. A lost condition surfaces as storage.ErrConditionFailed
	// so the caller can re-read and retry.
	ApplyBalanceChange(ctx context.Context, userID string, prevBalance int, entry *domain.LedgerEntry) error

	// History returns ledger entries newest first.
	History(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)
}

type PromptRepository interface {
	Create(ctx context.Context, p *domain.Prompt) error
	Get(ctx context.Context, promptID string) (*domain.Prompt, error)
	Update(ctx context.Context, p *domain.Prompt) error
	Delete(ctx context.Context, promptID string) error

	// StatsBatch returns a complete map: every requested id is present,
	// missing prompts read as zero counters.
	StatsBatch(ctx context.Context, promptIDs []string) (map[string]domain.PromptStats, error)

	// Counter adjustments. Decrements floor at zero and increments
	// require the listing row to still exist; a lost condition surfaces
	// as storage.ErrConditionFailed.
	AdjustInteractionCount(ctx context.Context, promptID string, kind domain.InteractionKind, delta int) error
	AdjustCommentCount(ctx context.Context, promptID string, delta int) error
	SetCounters(ctx context.Context, promptID string, stats domain.PromptStats) error

	// Full-table sweeps. Owner pages, bulk maintenance and reconciliation only.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Prompt, error)
	ListAll(ctx context.Context) ([]domain.Prompt, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, in *domain.Interaction) error
	Delete(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error

	// ExistsBatch returns a complete map: every requested id is present,
	// defaulting to false.
	ExistsBatch(ctx context.Context, userID string, kind domain.InteractionKind, promptIDs []string) (map[string]bool, error)

	ListByUser(ctx context.Context, userID string, kind domain.InteractionKind) ([]domain.Interaction, error)

	// ListForPrompt is a full-table sweep; bulk maintenance only.
	ListForPrompt(ctx context.Context, promptID string) ([]domain.Interaction, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	Update(ctx context.Context, promptID, commentKey, authorID, content string) error
	Delete(ctx context.Context, promptID, commentKey, authorID string) error

	// ListByPrompt returns comments oldest first.
	ListByPrompt(ctx context.Context, promptID string) ([]domain.Comment, error)

	// ListByAuthor is a full-table sweep; bulk maintenance only.
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error)

	CountForPrompt(ctx context.Context, promptID string) (int, error)
}
