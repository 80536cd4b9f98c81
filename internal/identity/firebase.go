package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseResolver verifies Firebase ID tokens. The Firebase UID is the
// user id everywhere in the table.
type FirebaseResolver struct {
	auth *auth.Client
}

func NewFirebaseResolver(ctx context.Context, projectID, credentialsFile string) (*FirebaseResolver, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &FirebaseResolver{auth: client}, nil
}

func (r *FirebaseResolver) Resolve(ctx context.Context, token string) (string, error) {
	decoded, err := r.auth.VerifyIDToken(ctx, token)
	if err != nil {
		if isExpired(err) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	return decoded.UID, nil
}

func isExpired(err error) bool {
	var unwrapped error = err
	for unwrapped != nil {
		if strings.Contains(unwrapped.Error(), "expired") {
			return true
		}
		unwrapped = errors.Unwrap(unwrapped)
	}
	return false
}
