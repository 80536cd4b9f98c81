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
	attrAuthorID       = "author_id"
	attrAuthorNickname = "author_nickname"
	attrComment        = "comment"
)

type commentRepository struct {
	store storage.Store
}

func NewCommentRepository(store storage.Store) repository.CommentRepository {
	return &commentRepository{store: store}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	now := time.Now().UTC()
	if c.CreatedAt == "" {
		c.CreatedAt = now.Format(time.RFC3339Nano)
	}
	if c.CommentKey == "" {
		c.CommentKey = CommentSK(now)
	}
	it := storage.Item{
		storage.AttrPK: PromptPK(c.PromptID),
		storage.AttrSK: c.CommentKey,
		AttrType:       TypeComment,
		attrAuthorID:   c.AuthorID,
		attrComment:    c.Content,
		attrCreatedAt:  c.CreatedAt,
	}
	if c.AuthorNickname != "" {
		it[attrAuthorNickname] = c.AuthorNickname
	}
	return r.store.Put(ctx, storage.Put{Item: it, Cond: storage.Condition{IfAbsent: true}})
}

func (r *commentRepository) Update(ctx context.Context, promptID, commentKey, authorID, content string) error {
	err := r.store.Update(ctx, storage.Update{
		Key: storage.Key{PK: PromptPK(promptID), SK: commentKey},
		Set: map[string]any{
			attrComment:   content,
			attrUpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Cond: storage.Condition{
			IfExists:   true,
			AttrEquals: map[string]any{attrAuthorID: authorID},
		},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return r.authorFailure(ctx, promptID, commentKey)
	}
	return err
}

func (r *commentRepository) Delete(ctx context.Context, promptID, commentKey, authorID string) error {
	err := r.store.Delete(ctx, storage.Delete{
		Key: storage.Key{PK: PromptPK(promptID), SK: commentKey},
		Cond: storage.Condition{
			IfExists:   true,
			AttrEquals: map[string]any{attrAuthorID: authorID},
		},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return r.authorFailure(ctx, promptID, commentKey)
	}
	return err
}

// authorFailure disambiguates a lost author condition: a missing row is
// not-found, an existing row is someone else's comment.
func (r *commentRepository) authorFailure(ctx context.Context, promptID, commentKey string) error {
	it, err := r.store.Get(ctx, storage.Key{PK: PromptPK(promptID), SK: commentKey})
	if err != nil {
		return err
	}
	if it == nil {
		return domain.ErrCommentNotFound
	}
	return domain.ErrForbidden
}

func (r *commentRepository) ListByPrompt(ctx context.Context, promptID string) ([]domain.Comment, error) {
	items, err := r.store.Query(ctx, storage.Query{
		PK:       PromptPK(promptID),
		SKPrefix: SKCommentPrefix,
	})
	if err != nil {
		return nil, err
	}
	return commentsFromItems(items), nil
}

func (r *commentRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	items, err := r.store.Scan(ctx, storage.Scan{
		SKPrefix:   SKCommentPrefix,
		AttrEquals: map[string]any{attrAuthorID: authorID},
	})
	if err != nil {
		return nil, err
	}
	return commentsFromItems(items), nil
}

func (r *commentRepository) CountForPrompt(ctx context.Context, promptID string) (int, error) {
	comments, err := r.ListByPrompt(ctx, promptID)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

func commentsFromItems(items []storage.Item) []domain.Comment {
	comments := make([]domain.Comment, 0, len(items))
	for _, it := range items {
		promptID, ok := PromptIDFromPK(it.String(storage.AttrPK))
		if !ok {
			continue
		}
		comments = append(comments, domain.Comment{
			PromptID:       promptID,
			CommentKey:     it.String(storage.AttrSK),
			AuthorID:       it.String(attrAuthorID),
			AuthorNickname: it.String(attrAuthorNickname),
			Content:        it.String(attrComment),
			CreatedAt:      it.String(attrCreatedAt),
			UpdatedAt:      it.String(attrUpdatedAt),
		})
	}
	return comments
}
