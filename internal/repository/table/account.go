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
	attrEmail        = "email"
	attrNickname     = "nickname"
	attrCredit       = "credit"
	attrAmount       = "amount"
	attrBalanceAfter = "balance_after"
	attrDescription  = "description"
	attrPromptIDs    = "prompt_ids"
	attrPromptTitles = "prompt_titles"
	attrPurchaseID   = "purchase_id"
)

type accountRepository struct {
	store storage.Store
}

func NewAccountRepository(store storage.Store) repository.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Create(ctx context.Context, acct *domain.Account) error {
	if acct.CreatedAt == "" {
		acct.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	it := storage.Item{
		storage.AttrPK: UserPK(acct.UserID),
		storage.AttrSK: SKProfile,
		AttrType:       TypeUser,
		attrEmail:      acct.Email,
		attrNickname:   acct.Nickname,
		attrCredit:     acct.Balance,
		attrCreatedAt:  acct.CreatedAt,
	}
	err := r.store.Put(ctx, storage.Put{Item: it, Cond: storage.Condition{IfAbsent: true}})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrAccountAlreadyExists
	}
	return err
}

func (r *accountRepository) Get(ctx context.Context, userID string) (*domain.Account, error) {
	it, err := r.store.Get(ctx, storage.Key{PK: UserPK(userID), SK: SKProfile})
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrAccountNotFound
	}
	return accountFromItem(userID, it), nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, userID, nickname string) error {
	err := r.store.Update(ctx, storage.Update{
		Key: storage.Key{PK: UserPK(userID), SK: SKProfile},
		Set: map[string]any{
			attrNickname:  nickname,
			attrUpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Cond: storage.Condition{IfExists: true},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return domain.ErrAccountNotFound
	}
	return err
}

func (r *accountRepository) ApplyBalanceChange(ctx context.Context, userID string, prevBalance int, entry *domain.LedgerEntry) error {
	now := time.Now().UTC()
	entry.UserID = userID
	if entry.CreatedAt == "" {
		entry.CreatedAt = now.Format(time.RFC3339Nano)
	}
	if entry.EntryID == "" {
		entry.EntryID = CreditSK(now)
	}
	balance := storage.Update{
		Key: storage.Key{PK: UserPK(userID), SK: SKProfile},
		Set: map[string]any{
			attrCredit:    entry.BalanceAfter,
			attrUpdatedAt: now.Format(time.RFC3339),
		},
		Cond: storage.Condition{
			IfExists:   true,
			AttrEquals: map[string]any{attrCredit: prevBalance},
		},
	}
	history := storage.Put{
		Item: ledgerToItem(entry),
		Cond: storage.Condition{IfAbsent: true},
	}
	return r.store.TransactWrite(ctx,
		storage.TransactItem{Update: &balance},
		storage.TransactItem{Put: &history},
	)
}

func (r *accountRepository) History(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	items, err := r.store.Query(ctx, storage.Query{
		PK:         UserPK(userID),
		SKPrefix:   SKCreditPrefix,
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LedgerEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, *ledgerFromItem(userID, it))
	}
	return entries, nil
}

func accountFromItem(userID string, it storage.Item) *domain.Account {
	return &domain.Account{
		UserID:    userID,
		Email:     it.String(attrEmail),
		Nickname:  it.String(attrNickname),
		Balance:   it.Int(attrCredit),
		CreatedAt: it.String(attrCreatedAt),
		UpdatedAt: it.String(attrUpdatedAt),
	}
}

func ledgerToItem(entry *domain.LedgerEntry) storage.Item {
	it := storage.Item{
		storage.AttrPK:   UserPK(entry.UserID),
		storage.AttrSK:   entry.EntryID,
		AttrType:         TypeCredit,
		attrAmount:       entry.Amount,
		attrBalanceAfter: entry.BalanceAfter,
		attrDescription:  entry.Description,
		attrCreatedAt:    entry.CreatedAt,
	}
	if len(entry.PromptIDs) > 0 {
		it[attrPromptIDs] = entry.PromptIDs
	}
	if len(entry.PromptTitles) > 0 {
		it[attrPromptTitles] = entry.PromptTitles
	}
	if entry.PurchaseID != "" {
		it[attrPurchaseID] = entry.PurchaseID
	}
	return it
}

func ledgerFromItem(userID string, it storage.Item) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		UserID:       userID,
		EntryID:      it.String(storage.AttrSK),
		Amount:       it.Int(attrAmount),
		BalanceAfter: it.Int(attrBalanceAfter),
		Description:  it.String(attrDescription),
		PromptIDs:    it.Strings(attrPromptIDs),
		PromptTitles: it.Strings(attrPromptTitles),
		PurchaseID:   it.String(attrPurchaseID),
		CreatedAt:    it.String(attrCreatedAt),
	}
}
