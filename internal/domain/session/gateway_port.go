package session

import "context"

// APICredentials are the fixed storefront API account used to mint an API token.
type APICredentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// APIAuthenticator exchanges API credentials for a bearer token (POST /login).
type APIAuthenticator interface {
	Login(ctx context.Context, creds APICredentials) (string, error)
}
