package service

import (
	"context"
	"errors"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/storage"
)

// cascadeService hard-deletes users and listings. It works directly
// against the store for partition sweeps and through the repositories
// for counter repair. Failures on individual rows are logged and
// skipped so a cascade always runs to the end; a rerun is safe and
// picks up whatever was left behind.
type cascadeService struct {
	store        storage.Store
	prompts      repository.PromptRepository
	interactions repository.InteractionRepository
	comments     repository.CommentRepository
}

func NewCascadeService(
	store storage.Store,
	prompts repository.PromptRepository,
	interactions repository.InteractionRepository,
	comments repository.CommentRepository,
) CascadeService {
	return &cascadeService{
		store:        store,
		prompts:      prompts,
		interactions: interactions,
		comments:     comments,
	}
}

func (s *cascadeService) DeleteUser(ctx context.Context, userID string) error {
	logger.InfoContext(ctx, "User cascade delete started", "user_id", userID)

	// 1. The user partition: profile, ledger, likes, bookmarks. Counter
	// repair happens before the interaction row goes away.
	items, err := s.store.Query(ctx, storage.Query{PK: table.UserPK(userID)})
	if err != nil {
		return err
	}
	for _, it := range items {
		sk := it.String(storage.AttrSK)
		if kind, promptID, ok := table.ParseInteractionSK(sk); ok {
			s.decrementInteraction(ctx, promptID, kind)
		}
		if err := s.store.Delete(ctx, storage.Delete{Key: it.Key()}); err != nil {
			logger.WarnContext(ctx, "Row delete failed, skipping",
				"pk", it.String(storage.AttrPK), "sk", sk, "error", err)
		}
	}

	// 2. Comments the user wrote under other users' prompts.
	authored, err := s.comments.ListByAuthor(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Author comment sweep failed, skipping", "user_id", userID, "error", err)
	}
	for _, c := range authored {
		if err := s.comments.Delete(ctx, c.PromptID, c.CommentKey, userID); err != nil {
			logger.WarnContext(ctx, "Comment delete failed, skipping",
				"prompt_id", c.PromptID, "comment_key", c.CommentKey, "error", err)
			continue
		}
		s.decrementComment(ctx, c.PromptID)
	}

	// 3. Listings the user owns, with everything attached to them.
	owned, err := s.prompts.ListByOwner(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "Owned listing sweep failed, skipping", "user_id", userID, "error", err)
	}
	for _, p := range owned {
		if err := s.deletePromptRows(ctx, p.PromptID); err != nil {
			logger.WarnContext(ctx, "Listing cascade failed, skipping",
				"prompt_id", p.PromptID, "error", err)
		}
	}

	logger.InfoContext(ctx, "User cascade delete finished", "user_id", userID)
	return nil
}

func (s *cascadeService) DeletePrompt(ctx context.Context, ownerID, promptID string) error {
	p, err := s.prompts.Get(ctx, promptID)
	if err != nil {
		return err
	}
	if p.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	logger.InfoContext(ctx, "Listing cascade delete started", "prompt_id", promptID, "owner_id", ownerID)
	return s.deletePromptRows(ctx, promptID)
}

// deletePromptRows removes the foreign like/bookmark rows pointing at
// the prompt, then the prompt partition itself (metadata and comments).
func (s *cascadeService) deletePromptRows(ctx context.Context, promptID string) error {
	foreign, err := s.interactions.ListForPrompt(ctx, promptID)
	if err != nil {
		logger.WarnContext(ctx, "Foreign interaction sweep failed, skipping",
			"prompt_id", promptID, "error", err)
	}
	for _, rec := range foreign {
		err := s.interactions.Delete(ctx, rec.UserID, rec.PromptID, rec.Kind)
		if err != nil && !errors.Is(err, domain.ErrInteractionNotFound) {
			logger.WarnContext(ctx, "Interaction delete failed, skipping",
				"user_id", rec.UserID, "prompt_id", rec.PromptID, "error", err)
		}
	}

	items, err := s.store.Query(ctx, storage.Query{PK: table.PromptPK(promptID)})
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.store.Delete(ctx, storage.Delete{Key: it.Key()}); err != nil {
			logger.WarnContext(ctx, "Row delete failed, skipping",
				"pk", it.String(storage.AttrPK), "sk", it.String(storage.AttrSK), "error", err)
		}
	}
	return nil
}

func (s *cascadeService) decrementInteraction(ctx context.Context, promptID string, kind domain.InteractionKind) {
	err := s.prompts.AdjustInteractionCount(ctx, promptID, kind, -1)
	if err != nil && !errors.Is(err, storage.ErrConditionFailed) {
		logger.WarnContext(ctx, "Counter repair failed, skipping",
			"prompt_id", promptID, "kind", kind, "error", err)
	}
}

func (s *cascadeService) decrementComment(ctx context.Context, promptID string) {
	err := s.prompts.AdjustCommentCount(ctx, promptID, -1)
	if err != nil && !errors.Is(err, storage.ErrConditionFailed) {
		logger.WarnContext(ctx, "Counter repair failed, skipping",
			"prompt_id", promptID, "error", err)
	}
}
