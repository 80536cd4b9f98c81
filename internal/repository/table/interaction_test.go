package table_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/storage"
)

func TestInteractionRepository_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := table.NewInteractionRepository(storage.NewMemoryStore())

	like := &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionLike}
	require.NoError(t, repo.Create(ctx, like))

	err := repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionLike})
	assert.ErrorIs(t, err, domain.ErrDuplicateInteraction)

	// The same prompt can still be bookmarked.
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionBookmark}))

	require.NoError(t, repo.Delete(ctx, "u1", "p1", domain.InteractionLike))
	err = repo.Delete(ctx, "u1", "p1", domain.InteractionLike)
	assert.ErrorIs(t, err, domain.ErrInteractionNotFound)
}

func TestInteractionRepository_ExistsBatch(t *testing.T) {
	ctx := context.Background()
	repo := table.NewInteractionRepository(storage.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionLike}))
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p3", Kind: domain.InteractionLike}))

	exists, err := repo.ExistsBatch(ctx, "u1", domain.InteractionLike, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true, "p2": false, "p3": true}, exists)
}

func TestInteractionRepository_Listing(t *testing.T) {
	ctx := context.Background()
	repo := table.NewInteractionRepository(storage.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionLike}))
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p2", Kind: domain.InteractionBookmark}))
	require.NoError(t, repo.Create(ctx, &domain.Interaction{UserID: "u2", PromptID: "p1", Kind: domain.InteractionBookmark}))

	likes, err := repo.ListByUser(ctx, "u1", domain.InteractionLike)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "p1", likes[0].PromptID)

	forPrompt, err := repo.ListForPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, forPrompt, 2)
}
