package service

import (
	"context"

	"github.com/google/uuid"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/events"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/search"
)

type promptService struct {
	prompts   repository.PromptRepository
	publisher events.Publisher
	searcher  search.Client
	cascade   CascadeService
}

func NewPromptService(
	prompts repository.PromptRepository,
	publisher events.Publisher,
	searcher search.Client,
	cascade CascadeService,
) PromptService {
	return &promptService{
		prompts:   prompts,
		publisher: publisher,
		searcher:  searcher,
		cascade:   cascade,
	}
}

func (s *promptService) CreatePrompt(ctx context.Context, ownerID string, p *domain.Prompt) (*domain.Prompt, error) {
	p.PromptID = uuid.NewString()
	p.OwnerID = ownerID
	p.LikeCount = 0
	p.BookmarkCount = 0
	p.CommentCount = 0
	if err := s.prompts.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Listing created", "prompt_id", p.PromptID, "owner_id", ownerID)

	// Best effort: the listing is committed either way, the search read
	// side catches up from the next event or a reindex.
	err := s.publisher.PublishPromptCreated(ctx, domain.PromptCreatedEvent{
		PromptID:  p.PromptID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		Price:     p.Price,
		Category:  p.Category,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		logger.WarnContext(ctx, "Listing event publish failed", "prompt_id", p.PromptID, "error", err)
	}
	return p, nil
}

func (s *promptService) GetPrompt(ctx context.Context, promptID string) (*domain.Prompt, error) {
	return s.prompts.Get(ctx, promptID)
}

func (s *promptService) UpdatePrompt(ctx context.Context, ownerID string, p *domain.Prompt) error {
	existing, err := s.prompts.Get(ctx, p.PromptID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return s.prompts.Update(ctx, p)
}

func (s *promptService) DeletePrompt(ctx context.Context, ownerID, promptID string) error {
	return s.cascade.DeletePrompt(ctx, ownerID, promptID)
}

func (s *promptService) ListMyPrompts(ctx context.Context, ownerID string) ([]domain.Prompt, error) {
	return s.prompts.ListByOwner(ctx, ownerID)
}

func (s *promptService) SearchPrompts(ctx context.Context, query string, limit int) ([]search.Result, error) {
	return s.searcher.SearchPrompts(ctx, query, limit)
}
