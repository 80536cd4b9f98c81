package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims defines the claims carried by locally issued tokens.
type UserClaims struct {
	jwt.RegisteredClaims
}

// JWTResolver signs and verifies HS256 tokens. Local and dev
// environments only; production uses the Firebase resolver.
type JWTResolver struct {
	secret []byte
	expiry time.Duration
}

func NewJWTResolver(secret string, expiry time.Duration) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), expiry: expiry}
}

// Issue mints a token for userID. Exposed for the dev token endpoint and
// for tests.
func (r *JWTResolver) Issue(userID string) (string, error) {
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(r.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "fromprom-backend",
			Audience:  jwt.ClaimStrings{"api-access"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

func (r *JWTResolver) Resolve(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid && claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", ErrInvalidToken
}
