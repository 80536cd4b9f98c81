package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/service"
)

func newCascadeFixture(t *testing.T, promptOwners map[string]string) (*interactionFixture, service.CascadeService) {
	t.Helper()
	f := newInteractionFixture(t)
	for id, owner := range promptOwners {
		require.NoError(t, f.prompts.Create(context.Background(), &domain.Prompt{PromptID: id, OwnerID: owner, Title: "T " + id}))
	}
	cascade := service.NewCascadeService(f.store, f.prompts, f.interactions, f.comments)
	return f, cascade
}

func TestCascade_DeletePrompt(t *testing.T) {
	ctx := context.Background()
	f, cascade := newCascadeFixture(t, map[string]string{"p1": "owner", "p2": "owner"})

	// Likes and comments from other users hang off p1.
	require.NoError(t, f.svc.Add(ctx, "u1", "p1", domain.InteractionLike))
	require.NoError(t, f.svc.Add(ctx, "u2", "p1", domain.InteractionBookmark))
	_, err := f.svc.AddComment(ctx, "u1", "p1", "hello")
	require.NoError(t, err)

	err = cascade.DeletePrompt(ctx, "intruder", "p1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, cascade.DeletePrompt(ctx, "owner", "p1"))

	_, err = f.prompts.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)

	// Foreign interaction rows are gone with the listing.
	likes, err := f.interactions.ListByUser(ctx, "u1", domain.InteractionLike)
	require.NoError(t, err)
	assert.Empty(t, likes)

	comments, err := f.comments.ListByPrompt(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	// The sibling listing is untouched.
	_, err = f.prompts.Get(ctx, "p2")
	assert.NoError(t, err)

	err = cascade.DeletePrompt(ctx, "owner", "p1")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}

func TestCascade_DeleteUser(t *testing.T) {
	ctx := context.Background()
	f, cascade := newCascadeFixture(t, map[string]string{"mine": "victim", "theirs": "other"})

	accounts := table.NewAccountRepository(f.store)
	require.NoError(t, accounts.Create(ctx, &domain.Account{UserID: "victim", Email: "v@example.com"}))

	// The victim interacted with the surviving listing and commented on it.
	require.NoError(t, f.svc.Add(ctx, "victim", "theirs", domain.InteractionLike))
	require.NoError(t, f.svc.Add(ctx, "victim", "theirs", domain.InteractionBookmark))
	_, err := f.svc.AddComment(ctx, "victim", "theirs", "bye")
	require.NoError(t, err)

	// A bystander liked the victim's listing.
	require.NoError(t, f.svc.Add(ctx, "bystander", "mine", domain.InteractionLike))

	require.NoError(t, cascade.DeleteUser(ctx, "victim"))

	// Profile, interaction rows and authored comments are gone.
	_, err = accounts.Get(ctx, "victim")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	likes, err := f.interactions.ListByUser(ctx, "victim", domain.InteractionLike)
	require.NoError(t, err)
	assert.Empty(t, likes)
	comments, err := f.comments.ListByPrompt(ctx, "theirs")
	require.NoError(t, err)
	assert.Empty(t, comments)

	// The surviving listing's counters were repaired on the way out.
	assert.Equal(t, domain.PromptStats{}, f.stats(t, "theirs"))

	// The victim's own listing went away, including the bystander's like
	// row pointing at it.
	_, err = f.prompts.Get(ctx, "mine")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
	likes, err = f.interactions.ListByUser(ctx, "bystander", domain.InteractionLike)
	require.NoError(t, err)
	assert.Empty(t, likes)

	// Reruns are safe no-ops.
	assert.NoError(t, cascade.DeleteUser(ctx, "victim"))
}
