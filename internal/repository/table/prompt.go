package table

import (
	"context"
	"errors"
	"time"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/storage"
)

const (
	attrOwnerID       = "owner_id"
	attrTitle         = "title"
	attrPromptDesc    = "prompt_description"
	attrContent       = "content"
	attrPrice         = "price"
	attrCategory      = "category"
	attrTags          = "tags"
	attrLikeCount     = "like_count"
	attrBookmarkCount = "bookmark_count"
	attrCommentCount  = "comment_count"
)

func counterAttr(kind domain.InteractionKind) string {
	if kind == domain.InteractionBookmark {
		return attrBookmarkCount
	}
	return attrLikeCount
}

type promptRepository struct {
	store storage.Store
}

func NewPromptRepository(store storage.Store) repository.PromptRepository {
	return &promptRepository{store: store}
}

func (r *promptRepository) Create(ctx context.Context, p *domain.Prompt) error {
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	it := storage.Item{
		storage.AttrPK:    PromptPK(p.PromptID),
		storage.AttrSK:    SKMetadata,
		AttrType:          TypePrompt,
		attrOwnerID:       p.OwnerID,
		attrTitle:         p.Title,
		attrPromptDesc:    p.Description,
		attrContent:       p.Content,
		attrPrice:         p.Price,
		attrLikeCount:     p.LikeCount,
		attrBookmarkCount: p.BookmarkCount,
		attrCommentCount:  p.CommentCount,
		attrCreatedAt:     p.CreatedAt,
	}
	if p.Category != "" {
		it[attrCategory] = p.Category
	}
	if len(p.Tags) > 0 {
		it[attrTags] = p.Tags
	}
	return r.store.Put(ctx, storage.Put{Item: it, Cond: storage.Condition{IfAbsent: true}})
}

func (r *promptRepository) Get(ctx context.Context, promptID string) (*domain.Prompt, error) {
	it, err := r.store.Get(ctx, storage.Key{PK: PromptPK(promptID), SK: SKMetadata})
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrPromptNotFound
	}
	return promptFromItem(promptID, it), nil
}

func (r *promptRepository) Update(ctx context.Context, p *domain.Prompt) error {
	set := map[string]any{
		attrTitle:      p.Title,
		attrPromptDesc: p.Description,
		attrContent:    p.Content,
		attrPrice:      p.Price,
		attrCategory:   p.Category,
		attrUpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if len(p.Tags) > 0 {
		set[attrTags] = p.Tags
	}
	err := r.store.Update(ctx, storage.Update{
		Key:  storage.Key{PK: PromptPK(p.PromptID), SK: SKMetadata},
		Set:  set,
		Cond: storage.Condition{IfExists: true},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrPromptNotFound
	}
	return err
}

func (r *promptRepository) Delete(ctx context.Context, promptID string) error {
	err := r.store.Delete(ctx, storage.Delete{
		Key:  storage.Key{PK: PromptPK(promptID), SK: SKMetadata},
		Cond: storage.Condition{IfExists: true},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrPromptNotFound
	}
	return err
}

func (r *promptRepository) StatsBatch(ctx context.Context, promptIDs []string) (map[string]domain.PromptStats, error) {
	stats := make(map[string]domain.PromptStats, len(promptIDs))
	keys := make([]storage.Key, 0, len(promptIDs))
	for _, id := range promptIDs {
		stats[id] = domain.PromptStats{}
		keys = append(keys, storage.Key{PK: PromptPK(id), SK: SKMetadata})
	}
	items, err := r.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		id, ok := PromptIDFromPK(it.String(storage.AttrPK))
		if !ok {
			continue
		}
		stats[id] = statsFromItem(it)
	}
	return stats, nil
}

func (r *promptRepository) AdjustInteractionCount(ctx context.Context, promptID string, kind domain.InteractionKind, delta int) error {
	return r.adjustCounter(ctx, promptID, counterAttr(kind), delta)
}

func (r *promptRepository) AdjustCommentCount(ctx context.Context, promptID string, delta int) error {
	return r.adjustCounter(ctx, promptID, attrCommentCount, delta)
}

func (r *promptRepository) adjustCounter(ctx context.Context, promptID, attr string, delta int) error {
	inc := storage.Increment{
		Key:   storage.Key{PK: PromptPK(promptID), SK: SKMetadata},
		Attr:  attr,
		Delta: delta,
	}
	if delta < 0 {
		// Floors the counter at zero; a missing attribute fails the
		// same condition.
		inc.RequirePositive = true
	} else {
		// Never resurrect a deleted listing as a counter-only row.
		inc.Cond = storage.Condition{IfExists: true}
	}
	return r.store.Increment(ctx, inc)
}

func (r *promptRepository) SetCounters(ctx context.Context, promptID string, stats domain.PromptStats) error {
	err := r.store.Update(ctx, storage.Update{
		Key: storage.Key{PK: PromptPK(promptID), SK: SKMetadata},
		Set: map[string]any{
			attrLikeCount:     stats.LikeCount,
			attrBookmarkCount: stats.BookmarkCount,
			attrCommentCount:  stats.CommentCount,
		},
		Cond: storage.Condition{IfExists: true},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrPromptNotFound
	}
	return err
}

func (r *promptRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Prompt, error) {
	items, err := r.store.Scan(ctx, storage.Scan{
		SKIn:       []string{SKMetadata},
		AttrEquals: map[string]any{attrOwnerID: ownerID},
	})
	if err != nil {
		return nil, err
	}
	return promptsFromItems(items), nil
}

func (r *promptRepository) ListAll(ctx context.Context) ([]domain.Prompt, error) {
	items, err := r.store.Scan(ctx, storage.Scan{
		SKIn:       []string{SKMetadata},
		AttrEquals: map[string]any{AttrType: TypePrompt},
	})
	if err != nil {
		return nil, err
	}
	return promptsFromItems(items), nil
}

func promptsFromItems(items []storage.Item) []domain.Prompt {
	prompts := make([]domain.Prompt, 0, len(items))
	for _, it := range items {
		id, ok := PromptIDFromPK(it.String(storage.AttrPK))
		if !ok {
			continue
		}
		prompts = append(prompts, *promptFromItem(id, it))
	}
	return prompts
}

func promptFromItem(promptID string, it storage.Item) *domain.Prompt {
	return &domain.Prompt{
		PromptID:      promptID,
		OwnerID:       it.String(attrOwnerID),
		Title:         it.String(attrTitle),
		Description:   it.String(attrPromptDesc),
		Content:       it.String(attrContent),
		Price:         it.Int(attrPrice),
		Category:      it.String(attrCategory),
		Tags:          it.Strings(attrTags),
		LikeCount:     it.Int(attrLikeCount),
		BookmarkCount: it.Int(attrBookmarkCount),
		CommentCount:  it.Int(attrCommentCount),
		CreatedAt:     it.String(attrCreatedAt),
		UpdatedAt:     it.String(attrUpdatedAt),
	}
}

func statsFromItem(it storage.Item) domain.PromptStats {
	return domain.PromptStats{
		LikeCount:     it.Int(attrLikeCount),
		BookmarkCount: it.Int(attrBookmarkCount),
		CommentCount:  it.Int(attrCommentCount),
	}
}
