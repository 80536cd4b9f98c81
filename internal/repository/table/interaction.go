package table

import (
	"context"
	"errors"
	"time"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/storage"
)

type interactionRepository struct {
	store storage.Store
}

func NewInteractionRepository(store storage.Store) repository.InteractionRepository {
	return &interactionRepository{store: store}
}

func (r *interactionRepository) Create(ctx context.Context, in *domain.Interaction) error {
	if in.CreatedAt == "" {
		in.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	it := storage.Item{
		storage.AttrPK: UserPK(in.UserID),
		storage.AttrSK: InteractionSK(in.Kind, in.PromptID),
		AttrType:       TypeInteraction,
		attrCreatedAt:  in.CreatedAt,
	}
	err := r.store.Put(ctx, storage.Put{Item: it, Cond: storage.Condition{IfAbsent: true}})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrDuplicateInteraction
	}
	return err
}

func (r *interactionRepository) Delete(ctx context.Context, userID, promptID string, kind domain.InteractionKind) error {
	err := r.store.Delete(ctx, storage.Delete{
		Key:  storage.Key{PK: UserPK(userID), SK: InteractionSK(kind, promptID)},
		Cond: storage.Condition{IfExists: true},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrInteractionNotFound
	}
	return err
}

func (r *interactionRepository) ExistsBatch(ctx context.Context, userID string, kind domain.InteractionKind, promptIDs []string) (map[string]bool, error) {
	exists := make(map[string]bool, len(promptIDs))
	keys := make([]storage.Key, 0, len(promptIDs))
	for _, id := range promptIDs {
		exists[id] = false
		keys = append(keys, storage.Key{PK: UserPK(userID), SK: InteractionSK(kind, id)})
	}
	items, err := r.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, id, ok := ParseInteractionSK(it.String(storage.AttrSK)); ok {
			exists[id] = true
		}
	}
	return exists, nil
}

func (r *interactionRepository) ListByUser(ctx context.Context, userID string, kind domain.InteractionKind) ([]domain.Interaction, error) {
	items, err := r.store.Query(ctx, storage.Query{
		PK:       UserPK(userID),
		SKPrefix: InteractionSKPrefix(kind),
	})
	if err != nil {
		return nil, err
	}
	return interactionsFromItems(items), nil
}

func (r *interactionRepository) ListForPrompt(ctx context.Context, promptID string) ([]domain.Interaction, error) {
	items, err := r.store.Scan(ctx, storage.Scan{
		SKIn: []string{
			InteractionSK(domain.InteractionLike, promptID),
			InteractionSK(domain.InteractionBookmark, promptID),
		},
	})
	if err != nil {
		return nil, err
	}
	return interactionsFromItems(items), nil
}

func interactionsFromItems(items []storage.Item) []domain.Interaction {
	interactions := make([]domain.Interaction, 0, len(items))
	for _, it := range items {
		kind, promptID, ok := ParseInteractionSK(it.String(storage.AttrSK))
		if !ok {
			continue
		}
		userID, ok := UserIDFromPK(it.String(storage.AttrPK))
		if !ok {
			continue
		}
		interactions = append(interactions, domain.Interaction{
			UserID:    userID,
			PromptID:  promptID,
			Kind:      kind,
			CreatedAt: it.String(attrCreatedAt),
		})
	}
	return interactions
}
