package service

import (
	"context"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
)

type userService struct {
	accounts repository.AccountRepository
	cascade  CascadeService
}

func NewUserService(accounts repository.AccountRepository, cascade CascadeService) UserService {
	return &userService{accounts: accounts, cascade: cascade}
}

func (s *userService) CreateAccount(ctx context.Context, userID, email, nickname string) (*domain.Account, error) {
	acct := &domain.Account{
		UserID:   userID,
		Email:    email,
		Nickname: nickname,
		Balance:  0,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Account created", "user_id", userID)
	return acct, nil
}

func (s *userService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return s.accounts.Get(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID, nickname string) error {
	return s.accounts.UpdateProfile(ctx, userID, nickname)
}

func (s *userService) Withdraw(ctx context.Context, userID string) error {
	// Existence check up front so withdrawal of an unknown user is a
	// clean not-found instead of an empty sweep.
	if _, err := s.accounts.Get(ctx, userID); err != nil {
		return err
	}
	return s.cascade.DeleteUser(ctx, userID)
}
