package di

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"storefront/internal/adapters/in/http/devapi"
	"storefront/internal/adapters/out/securestore"
	identitydom "storefront/internal/domain/identity"
	sessiondom "storefront/internal/domain/session"
	appcfg "storefront/internal/infra/config"
)

type stubIdentity struct{}

func (stubIdentity) SignUp(_ context.Context, email, _, name string) (identitydom.Account, error) {
	return identitydom.Account{UID: "u-new", Email: email, DisplayName: name, IDToken: "id-new"}, nil
}

func (stubIdentity) SignIn(_ context.Context, email, _ string) (identitydom.Account, error) {
	return identitydom.Account{UID: "u-1", Email: email, IDToken: "id-1"}, nil
}

func (stubIdentity) LookupAccount(context.Context, string) (identitydom.Account, error) {
	return identitydom.Account{UID: "u-1", Email: "a@b.co"}, nil
}

func (stubIdentity) UpdateDisplayName(context.Context, string, string) error { return nil }

func newTestContainer(t *testing.T, cache bool, opts ...Option) (*Container, *securestore.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(devapi.NewServer(devapi.Options{}).Router())
	t.Cleanup(srv.Close)

	store := securestore.NewMemoryStore()
	cfg := &appcfg.Config{
		APIBaseURL:  srv.URL,
		APIEmail:    "api@shop.test",
		APIUsername: "api",
		HTTPTimeout: 5 * time.Second,
		TokenCache:  cache,
	}
	opts = append([]Option{WithCredentialStore(store), WithoutHostedBackend()}, opts...)
	c, err := NewContainer(context.Background(), cfg, opts...)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, store
}

func TestContainerWithoutIdentity(t *testing.T) {
	c, _ := newTestContainer(t, false)

	assert.Zero(t, c.Identity)
	assert.Zero(t, c.Profile)
	assert.NotZero(t, c.Session)
	assert.NotZero(t, c.Cart)
}

func TestContainerGuestBrowsesCatalog(t *testing.T) {
	ctx := context.Background()
	c, store := newTestContainer(t, true)
	c.Session.Initialize(ctx)

	assert.NoError(t, c.Auth.EnterAsGuest(ctx))
	assert.True(t, c.Session.State().Guest)

	tok, err := store.Get(ctx, sessiondom.KeyAPIToken)
	assert.NoError(t, err)
	assert.True(t, tok.Ok())

	cat, err := c.Catalog.Load(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(devapi.DefaultSeed().Stocks), len(cat.Products))

	// guests have no session id; cart calls are no-ops
	assert.NoError(t, c.Cart.AddToCart(ctx, 42, 1))
	assert.Equal(t, 0, len(c.Cart.State().Items))
}

func TestContainerSignedInCartFlow(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContainer(t, false, WithIdentityProvider(stubIdentity{}))
	c.Session.Initialize(ctx)

	_, err := c.Auth.SignIn(ctx, identitydom.SignInForm{Email: "a@b.co", Password: "secret1"})
	assert.NoError(t, err)
	assert.True(t, c.Session.State().Authenticated)

	assert.NoError(t, c.Cart.AddToCart(ctx, 42, 2))
	items := c.Cart.State().Items
	assert.Equal(t, 1, len(items))
	assert.Equal(t, 2, items[0].Quantity)

	// logout changes the session id, so the local cart mirror is dropped
	assert.NoError(t, c.Session.Logout(ctx))
	assert.Equal(t, 0, len(c.Cart.State().Items))
}

func TestRedactPath(t *testing.T) {
	assert.Equal(t, "", redactPath(" "))
	assert.Equal(t, "***/key.json", redactPath("/home/me/secrets/key.json"))
	assert.Equal(t, "***/key.json", redactPath(`C:\keys\key.json`))
	assert.Equal(t, "***", redactPath("/tmp/"))
}

func TestContainerCachedTokenFollowsUnpublishedWrites(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContainer(t, true)
	c.Session.Initialize(ctx)

	_, ok, err := c.Tokens.Token(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Session.EstablishAnonymousSession(ctx, "tok-1")
	assert.NoError(t, err)

	tok, ok, err := c.Tokens.Token(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
}
