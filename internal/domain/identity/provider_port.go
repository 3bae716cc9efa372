package identity

import "context"

// Provider is the outbound port to the hosted identity service.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
	// LookupAccount resolves the account behind an ID token.
	LookupAccount(ctx context.Context, idToken string) (Account, error)
	UpdateDisplayName(ctx context.Context, idToken, displayName string) error
}
