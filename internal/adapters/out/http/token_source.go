// internal/adapters/out/http/token_source.go
package httpout

import (
	"context"
	"strings"
	"sync"

	sessiondom "storefront/internal/domain/session"
)

// TokenSource supplies the bearer token for each request.
// ok=false means no token: the request goes out without Authorization.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool, err error)
}

// StoreTokenSource reads the token from the credential store on every call.
type StoreTokenSource struct {
	store sessiondom.CredentialStore
}

func NewStoreTokenSource(store sessiondom.CredentialStore) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

func (s *StoreTokenSource) Token(ctx context.Context) (string, bool, error) {
	if s == nil || s.store == nil {
		return "", false, nil
	}
	v, err := s.store.Get(ctx, sessiondom.KeyAPIToken)
	if err != nil {
		return "", false, err
	}
	tok, ok := v.Get()
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != "", nil
}

// CachedTokenSource memoizes another source until Invalidate is called.
// Wire Invalidate to the session container's write hook so every credential write drops the cache.
type CachedTokenSource struct {
	inner TokenSource

	mu     sync.Mutex
	valid  bool
	token  string
	hasTok bool
}

func NewCachedTokenSource(inner TokenSource) *CachedTokenSource {
	return &CachedTokenSource{inner: inner}
}

func (c *CachedTokenSource) Token(ctx context.Context) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		return c.token, c.hasTok, nil
	}
	tok, ok, err := c.inner.Token(ctx)
	if err != nil {
		return "", false, err
	}
	c.token, c.hasTok, c.valid = tok, ok, true
	return tok, ok, nil
}

func (c *CachedTokenSource) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.token = ""
	c.hasTok = false
	c.mu.Unlock()
}
