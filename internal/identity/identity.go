// Package identity resolves bearer tokens to user ids. The rest of the
// system treats tokens as opaque; everything identity-provider specific
// stays behind the Resolver interface.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Resolver interface {
	// Resolve verifies the token and returns the caller's user id.
	Resolve(ctx context.Context, token string) (string, error)
}
