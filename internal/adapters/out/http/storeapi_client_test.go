package httpout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alecthomas/assert/v2"

	"storefront/internal/adapters/in/http/devapi"
	"storefront/internal/adapters/out/securestore"
	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	sessiondom "storefront/internal/domain/session"
)

var creds = sessiondom.APICredentials{Email: "api@shop.test", Username: "api"}

func newDevClient(t *testing.T) (*StoreAPIClient, *securestore.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(devapi.NewServer(devapi.Options{}).Router())
	t.Cleanup(srv.Close)

	store := securestore.NewMemoryStore()
	return NewStoreAPIClient(srv.URL, 0, NewStoreTokenSource(store)), store
}

func loginInto(t *testing.T, c *StoreAPIClient, store *securestore.MemoryStore) {
	t.Helper()
	tok, err := c.Login(context.Background(), creds)
	assert.NoError(t, err)
	assert.NoError(t, store.Set(context.Background(), sessiondom.KeyAPIToken, tok))
}

func TestClientWithoutTokenIsUnauthorized(t *testing.T) {
	c, _ := newDevClient(t)

	_, err := c.Groups(context.Background())
	assert.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCodeOf(err))
}

func TestClientCatalog(t *testing.T) {
	ctx := context.Background()
	c, store := newDevClient(t)
	loginInto(t, c, store)

	groups, err := c.Groups(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(devapi.DefaultSeed().Groups), len(groups))

	stocks, err := c.Products(ctx, catalogdom.DefaultStocksQuery())
	assert.NoError(t, err)
	assert.Equal(t, len(devapi.DefaultSeed().Stocks), len(stocks))

	products := catalogdom.Project(stocks, groups)
	assert.Equal(t, "Coffee", products[0].Category)
}

func TestClientCartScenario(t *testing.T) {
	ctx := context.Background()
	c, store := newDevClient(t)
	loginInto(t, c, store)

	const sid = int64(1700000000000)
	assert.NoError(t, c.AddCartItem(ctx, cartdom.NewAddRequest(sid, 42, 2)))

	items, err := c.Cart(ctx, sid, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, int64(42), items[0].StockID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, items[0].Price*2, items[0].SumPrice)

	assert.NoError(t, c.UpdateCartItem(ctx, cartdom.UpdateRequest{ID: items[0].ID, Quantity: 3}))
	items, err = c.Cart(ctx, sid, 0)
	assert.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)

	assert.NoError(t, c.DeleteCartItem(ctx, cartdom.DeleteRequest{ID: items[0].ID}))
	items, err = c.Cart(ctx, sid, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(items))

	err = c.DeleteCartItem(ctx, cartdom.DeleteRequest{ID: 424242})
	assert.Equal(t, http.StatusNotFound, StatusCodeOf(err))
}

func TestClientReadsTokenPerRequest(t *testing.T) {
	ctx := context.Background()
	c, store := newDevClient(t)
	loginInto(t, c, store)

	_, err := c.Groups(ctx)
	assert.NoError(t, err)

	// logout elsewhere: the next call sees no token
	assert.NoError(t, store.Delete(ctx, sessiondom.KeyAPIToken))
	_, err = c.Groups(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusCodeOf(err))
}

func TestCachedTokenSource(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	assert.NoError(t, store.Set(ctx, sessiondom.KeyAPIToken, "one"))

	cached := NewCachedTokenSource(NewStoreTokenSource(store))
	tok, ok, err := cached.Token(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", tok)

	assert.NoError(t, store.Set(ctx, sessiondom.KeyAPIToken, "two"))
	tok, _, _ = cached.Token(ctx)
	assert.Equal(t, "one", tok)

	cached.Invalidate()
	tok, _, _ = cached.Token(ctx)
	assert.Equal(t, "two", tok)
}

func TestClientCartNotSuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"items":[]}`))
	}))
	defer srv.Close()

	_, err := NewStoreAPIClient(srv.URL, 0, nil).Cart(context.Background(), 1, 0)
	assert.IsError(t, err, ErrCartNotAccepted)
}

func TestClientFillsMissingLineTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("sessionID"))
		assert.Equal(t, "0", r.URL.Query().Get("customerID"))
		_, _ = w.Write([]byte(`{"success":true,"items":[{"kasbuf_id":1,"stock_id":2,"name":"x","price":1.5,"quantity":4}]}`))
	}))
	defer srv.Close()

	items, err := NewStoreAPIClient(srv.URL, 0, nil).Cart(context.Background(), 5, 0)
	assert.NoError(t, err)
	assert.Equal(t, 6.0, items[0].SumPrice)
}

func TestClientEmptyBaseURL(t *testing.T) {
	_, err := NewStoreAPIClient(" ", 0, nil).Groups(context.Background())
	assert.Error(t, err)
}
