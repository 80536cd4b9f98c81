package service

import (
	"context"
	"errors"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
	"fromprom-backend/internal/storage"
)

type creditService struct {
	accounts     repository.AccountRepository
	maxBalance   int
	historyLimit int
	retries      int
}

func NewCreditService(accounts repository.AccountRepository, maxBalance, historyLimit, conflictRetries int) CreditService {
	if maxBalance <= 0 {
		maxBalance = domain.DefaultMaxBalance
	}
	return &creditService{
		accounts:     accounts,
		maxBalance:   maxBalance,
		historyLimit: historyLimit,
		retries:      conflictRetries,
	}
}

func (s *creditService) Charge(ctx context.Context, userID string, amount int) (*domain.LedgerEntry, error) {
	entry := domain.LedgerEntry{Description: domain.DescCreditCharge}
	return s.Credit(ctx, userID, amount, entry, domain.OverflowReject)
}

func (s *creditService) Spend(ctx context.Context, userID string, amount int, description string) (*domain.LedgerEntry, error) {
	if description == "" {
		description = domain.DescCreditSpend
	}
	return s.Debit(ctx, userID, amount, domain.LedgerEntry{Description: description})
}

func (s *creditService) Credit(ctx context.Context, userID string, amount int, entry domain.LedgerEntry, policy domain.OverflowPolicy) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	for attempt := 0; ; attempt++ {
		acct, err := s.accounts.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		next := acct.Balance + amount
		if next > s.maxBalance {
			if policy == domain.OverflowReject {
				return nil, domain.ErrBalanceLimitExceeded
			}
			// Clamp the balance at the ceiling. The entry still records
			// the full amount, so the overflow stays auditable.
			next = s.maxBalance
		}
		written := entry
		written.Amount = amount
		written.BalanceAfter = next
		err = s.accounts.ApplyBalanceChange(ctx, userID, acct.Balance, &written)
		if err == nil {
			logger.InfoContext(ctx, "Credit applied",
				"user_id", userID, "amount", amount, "balance", next, "description", written.Description)
			return &written, nil
		}
		if !errors.Is(err, storage.ErrConditionFailed) || attempt >= s.retries {
			return nil, err
		}
		// The balance moved under us; re-read and retry.
	}
}

func (s *creditService) Debit(ctx context.Context, userID string, amount int, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	for attempt := 0; ; attempt++ {
		acct, err := s.accounts.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if acct.Balance < amount {
			return nil, &domain.InsufficientBalanceError{Balance: acct.Balance, Required: amount}
		}
		written := entry
		written.Amount = -amount
		written.BalanceAfter = acct.Balance - amount
		err = s.accounts.ApplyBalanceChange(ctx, userID, acct.Balance, &written)
		if err == nil {
			logger.InfoContext(ctx, "Debit applied",
				"user_id", userID, "amount", amount, "balance", written.BalanceAfter, "description", written.Description)
			return &written, nil
		}
		if !errors.Is(err, storage.ErrConditionFailed) || attempt >= s.retries {
			return nil, err
		}
	}
}

func (s *creditService) GetBalance(ctx context.Context, userID string) (int, error) {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func (s *creditService) GetHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	return s.accounts.History(ctx, userID, limit)
}

func (s *creditService) GetPurchaseHistory(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	// Purchase entries are sparse among the ledger rows, so read the
	// whole history and filter.
	entries, err := s.accounts.History(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	purchases := make([]domain.LedgerEntry, 0, limit)
	for _, e := range entries {
		if e.Description != domain.DescPromptPurchase && e.Description != domain.DescCartPurchase {
			continue
		}
		purchases = append(purchases, e)
		if limit > 0 && len(purchases) >= limit {
			break
		}
	}
	return purchases, nil
}
