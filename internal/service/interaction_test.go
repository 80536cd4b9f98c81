package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/service"
	"fromprom-backend/internal/storage"
)

type interactionFixture struct {
	svc          service.InteractionService
	store        *storage.MemoryStore
	prompts      repository.PromptRepository
	interactions repository.InteractionRepository
	comments     repository.CommentRepository
	accounts     repository.AccountRepository
}

func newInteractionFixture(t *testing.T, promptIDs ...string) *interactionFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	f := &interactionFixture{
		store:        store,
		prompts:      table.NewPromptRepository(store),
		interactions: table.NewInteractionRepository(store),
		comments:     table.NewCommentRepository(store),
		accounts:     table.NewAccountRepository(store),
	}
	f.svc = service.NewInteractionService(f.interactions, f.comments, f.prompts, f.accounts)
	for _, id := range promptIDs {
		require.NoError(t, f.prompts.Create(context.Background(), &domain.Prompt{PromptID: id, OwnerID: "owner", Title: "T " + id}))
	}
	return f
}

func (f *interactionFixture) stats(t *testing.T, promptID string) domain.PromptStats {
	t.Helper()
	p, err := f.prompts.Get(context.Background(), promptID)
	require.NoError(t, err)
	return domain.PromptStats{LikeCount: p.LikeCount, BookmarkCount: p.BookmarkCount, CommentCount: p.CommentCount}
}

func TestInteractionService_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newInteractionFixture(t, "p1")

	require.NoError(t, f.svc.Add(ctx, "u1", "p1", domain.InteractionLike))
	assert.Equal(t, 1, f.stats(t, "p1").LikeCount)

	err := f.svc.Add(ctx, "u1", "p1", domain.InteractionLike)
	assert.ErrorIs(t, err, domain.ErrDuplicateInteraction)
	// The duplicate did not double-count.
	assert.Equal(t, 1, f.stats(t, "p1").LikeCount)

	err = f.svc.Add(ctx, "u1", "ghost", domain.InteractionLike)
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)

	require.NoError(t, f.svc.Remove(ctx, "u1", "p1", domain.InteractionLike))
	assert.Equal(t, 0, f.stats(t, "p1").LikeCount)

	err = f.svc.Remove(ctx, "u1", "p1", domain.InteractionLike)
	assert.ErrorIs(t, err, domain.ErrInteractionNotFound)
}

func TestInteractionService_RemoveFloorsCounter(t *testing.T) {
	ctx := context.Background()
	f := newInteractionFixture(t, "p1")

	// A drifted counter already at zero: the record removal still
	// succeeds and the counter stays at zero.
	require.NoError(t, f.interactions.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionBookmark}))
	require.NoError(t, f.svc.Remove(ctx, "u1", "p1", domain.InteractionBookmark))
	assert.Equal(t, 0, f.stats(t, "p1").BookmarkCount)
}

func TestInteractionService_Batches(t *testing.T) {
	ctx := context.Background()
	f := newInteractionFixture(t, "p1", "p2")

	require.NoError(t, f.svc.Add(ctx, "u1", "p1", domain.InteractionLike))

	stats, err := f.svc.StatsBatch(ctx, []string{"p1", "p2", "ghost"})
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, 1, stats["p1"].LikeCount)
	assert.Equal(t, domain.PromptStats{}, stats["ghost"])

	flags, err := f.svc.InteractedBatch(ctx, "u1", domain.InteractionLike, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true, "p2": false}, flags)

	// Empty input short-circuits to an empty map.
	stats, err = f.svc.StatsBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
	flags, err = f.svc.InteractedBatch(ctx, "u1", domain.InteractionLike, nil)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestInteractionService_Comments(t *testing.T) {
	ctx := context.Background()
	f := newInteractionFixture(t, "p1")
	require.NoError(t, f.accounts.Create(ctx, &domain.Account{UserID: "u1", Nickname: "Uno"}))

	comment, err := f.svc.AddComment(ctx, "u1", "p1", "nice prompt")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.CommentKey)
	// The display name rides along as a snapshot.
	assert.Equal(t, "Uno", comment.AuthorNickname)
	assert.Equal(t, 1, f.stats(t, "p1").CommentCount)

	_, err = f.svc.AddComment(ctx, "u1", "ghost", "text")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)

	require.NoError(t, f.svc.UpdateComment(ctx, "u1", "p1", comment.CommentKey, "edited"))
	err = f.svc.UpdateComment(ctx, "u2", "p1", comment.CommentKey, "hijack")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	comments, err := f.svc.ListComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "edited", comments[0].Content)

	err = f.svc.DeleteComment(ctx, "u2", "p1", comment.CommentKey)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	require.NoError(t, f.svc.DeleteComment(ctx, "u1", "p1", comment.CommentKey))
	assert.Equal(t, 0, f.stats(t, "p1").CommentCount)
}

func TestInteractionService_ReconcileCounters(t *testing.T) {
	ctx := context.Background()
	f := newInteractionFixture(t, "p1", "p2")

	// p1 drifts: two like records but a counter stuck at zero, plus an
	// unaccounted comment.
	require.NoError(t, f.interactions.Create(ctx, &domain.Interaction{UserID: "u1", PromptID: "p1", Kind: domain.InteractionLike}))
	require.NoError(t, f.interactions.Create(ctx, &domain.Interaction{UserID: "u2", PromptID: "p1", Kind: domain.InteractionLike}))
	require.NoError(t, f.comments.Create(ctx, &domain.Comment{PromptID: "p1", AuthorID: "u1", Content: "hi"}))

	// p2 is accurate and must be left alone.
	require.NoError(t, f.svc.Add(ctx, "u1", "p2", domain.InteractionBookmark))

	repaired, err := f.svc.ReconcileCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	assert.Equal(t, domain.PromptStats{LikeCount: 2, CommentCount: 1}, f.stats(t, "p1"))
	assert.Equal(t, domain.PromptStats{BookmarkCount: 1}, f.stats(t, "p2"))

	// A second run finds nothing to repair.
	repaired, err = f.svc.ReconcileCounters(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
