package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount rejects zero or negative credit amounts
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrBalanceLimitExceeded signals a self-service charge that would
	// push the balance past the ceiling
	ErrBalanceLimitExceeded = errors.New("credit balance limit exceeded")

	ErrPromptNotFound  = errors.New("prompt not found")
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDuplicateInteraction signals a like/bookmark that already exists
	ErrDuplicateInteraction = errors.New("interaction already recorded")

	// ErrInteractionNotFound signals removal of a like/bookmark that was
	// never recorded
	ErrInteractionNotFound = errors.New("interaction not found")

	// ErrForbidden signals a write against a resource the caller does not own
	ErrForbidden = errors.New("caller does not own this resource")

	ErrEmptyCart = errors.New("cart is empty")
)

// InsufficientBalanceError reports a debit larger than the current balance.
// It carries both values so the API layer can surface them to the caller.
type InsufficientBalanceError struct {
	Balance  int
	Required int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient credit balance: have %d, need %d", e.Balance, e.Required)
}
