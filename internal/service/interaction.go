package service

import (
	"context"
	"errors"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/storage"
)

type interactionService struct {
	interactions repository.InteractionRepository
	comments     repository.CommentRepository
	prompts      repository.PromptRepository
	accounts     repository.AccountRepository
}

func NewInteractionService(
	interactions repository.InteractionRepository,
	comments repository.CommentRepository,
	prompts repository.PromptRepository,
	accounts repository.AccountRepository,
) InteractionService {
	return &interactionService{
		interactions: interactions,
		comments:     comments,
		prompts:      prompts,
		accounts:     accounts,
	}
}

// Add records the interaction, then bumps the denormalized counter. The
// record write is authoritative; a lost counter bump is logged and left
// for the reconciliation job.
func (s *interactionService) Add(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error {
	if _, err := s.prompts.Get(ctx, promptID); err != nil {
		return err
	}
	err := s.interactions.Create(ctx, &domain.Interaction{
		UserID:   userID,
		PromptID: promptID,
		Kind:     kind,
	})
	if err != nil {
		return err
	}
	if err := s.prompts.AdjustInteractionCount(ctx, promptID, kind, 1); err != nil {
		logger.WarnContext(ctx, "Counter increment lost",
			"prompt_id", promptID, "kind", kind, "error", err)
	}
	return nil
}

func (s *interactionService) Remove(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error {
	if err := s.interactions.Delete(ctx, userID, promptID, kind); err != nil {
		return err
	}
	err := s.prompts.AdjustInteractionCount(ctx, promptID, kind, -1)
	if errors.Is(err, storage.ErrConditionFailed) {
		// Counter already at zero (or the prompt is gone); decrement is
		// a no-op.
		return nil
	}
	if err != nil {
		logger.WarnContext(ctx, "Counter decrement lost",
			"prompt_id", promptID, "kind", kind, "error", err)
	}
	return nil
}

func (s *interactionService) ListMine(ctx context.Context, userID string, kind domain.InteractionKind) ([]domain.Interaction, error) {
	return s.interactions.ListByUser(ctx, userID, kind)
}

func (s *interactionService) StatsBatch(ctx context.Context, promptIDs []string) (map[string]domain.PromptStats, error) {
	if len(promptIDs) == 0 {
		return map[string]domain.PromptStats{}, nil
	}
	return s.prompts.StatsBatch(ctx, promptIDs)
}

func (s *interactionService) InteractedBatch(ctx context.Context, userID string, kind domain.InteractionKind, promptIDs []string) (map[string]bool, error) {
	if len(promptIDs) == 0 {
		return map[string]bool{}, nil
	}
	return s.interactions.ExistsBatch(ctx, userID, kind, promptIDs)
}

func (s *interactionService) AddComment(ctx context.Context, userID, promptID, content string) (*domain.Comment, error) {
	if _, err := s.prompts.Get(ctx, promptID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		PromptID:       promptID,
		AuthorID:       userID,
		AuthorNickname: s.authorNickname(ctx, userID),
		Content:        content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.prompts.AdjustCommentCount(ctx, promptID, 1); err != nil {
		logger.WarnContext(ctx, "Comment counter increment lost",
			"prompt_id", promptID, "error", err)
	}
	return comment, nil
}

// authorNickname snapshots the commenter's display name into the row.
// Best effort: an unreadable profile leaves it empty.
func (s *interactionService) authorNickname(ctx context.Context, userID string) string {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return acct.Nickname
}

func (s *interactionService) UpdateComment(ctx context.Context, userID, promptID, commentKey, content string) error {
	return s.comments.Update(ctx, promptID, commentKey, userID, content)
}

func (s *interactionService) DeleteComment(ctx context.Context, userID, promptID, commentKey string) error {
	if err := s.comments.Delete(ctx, promptID, commentKey, userID); err != nil {
		return err
	}
	err := s.prompts.AdjustCommentCount(ctx, promptID, -1)
	if err != nil && !errors.Is(err, storage.ErrConditionFailed) {
		logger.WarnContext(ctx, "Comment counter decrement lost",
			"prompt_id", promptID, "error", err)
	}
	return nil
}

func (s *interactionService) ListComments(ctx context.Context, promptID string) ([]domain.Comment, error) {
	return s.comments.ListByPrompt(ctx, promptID)
}

func (s *interactionService) ReconcileCounters(ctx context.Context) (int, error) {
	prompts, err := s.prompts.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, p := range prompts {
		want, err := s.recount(ctx, p.PromptID)
		if err != nil {
			logger.WarnContext(ctx, "Recount failed, skipping prompt",
				"prompt_id", p.PromptID, "error", err)
			continue
		}
		have := domain.PromptStats{
			LikeCount:     p.LikeCount,
			BookmarkCount: p.BookmarkCount,
			CommentCount:  p.CommentCount,
		}
		if want == have {
			continue
		}
		if err := s.prompts.SetCounters(ctx, p.PromptID, want); err != nil {
			logger.WarnContext(ctx, "Counter repair failed, skipping prompt",
				"prompt_id", p.PromptID, "error", err)
			continue
		}
		logger.InfoContext(ctx, "Counters repaired",
			"prompt_id", p.PromptID, "was", have, "now", want)
		repaired++
	}
	return repaired, nil
}

func (s *interactionService) recount(ctx context.Context, promptID string) (domain.PromptStats, error) {
	var stats domain.PromptStats
	records, err := s.interactions.ListForPrompt(ctx, promptID)
	if err != nil {
		return stats, err
	}
	for _, rec := range records {
		switch rec.Kind {
		case domain.InteractionLike:
			stats.LikeCount++
		case domain.InteractionBookmark:
			stats.BookmarkCount++
		}
	}
	stats.CommentCount, err = s.comments.CountForPrompt(ctx, promptID)
	return stats, err
}
