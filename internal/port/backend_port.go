package port

import (
	"context"
)

type Credentials struct {
	Email    string
	Password string
}

// BackendUser is the user object the backend returns on sign in.
type BackendUser struct {
	ID    string
	Email string
	Name  string
	Role  string
	Token string
}

type Backend interface {
	Login(ctx context.Context, creds Credentials) (BackendUser, error)
	GoogleSignIn(ctx context.Context, idToken string) (BackendUser, error)

	// GetCartID returns the Shopify cart id mirrored for a user, or "" if none.
	GetCartID(ctx context.Context, userID string) (string, error)
	SaveCartID(ctx context.Context, userID, cartID string) error

	SubscribeNewsletter(ctx context.Context, email string) error
}
