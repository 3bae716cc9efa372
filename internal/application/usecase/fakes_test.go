package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/alecthomas/types/optional"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	identitydom "storefront/internal/domain/identity"
	profiledom "storefront/internal/domain/profile"
	sessiondom "storefront/internal/domain/session"
)

var errBoom = errors.New("boom")

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeStore is an in-memory credential store with per-operation failure injection.
type fakeStore struct {
	mu        sync.Mutex
	data      map[string]string
	failGet   bool
	failSet   map[string]bool
	failDel   map[string]bool
	deletions []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, failSet: map[string]bool{}, failDel: map[string]bool{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (optional.Option[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return optional.None[string](), errBoom
	}
	v, ok := s.data[key]
	if !ok {
		return optional.None[string](), nil
	}
	return optional.Some(v), nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet[key] {
		return errBoom
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletions = append(s.deletions, key)
	if s.failDel[key] {
		return errBoom
	}
	delete(s.data, key)
	return nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// fakeCartGateway keeps a server-side cart keyed by session id.
type fakeCartGateway struct {
	mu      sync.Mutex
	nextID  int64
	carts   map[int64][]cartdom.Item
	prices  map[int64]float64
	calls   []string
	failAdd bool
	failUpd bool
	failDel map[int64]bool
	failGet bool
	// onCart runs before every Cart response (used to observe queue ordering).
	onCart func()
}

func newFakeCartGateway() *fakeCartGateway {
	return &fakeCartGateway{
		nextID:  100,
		carts:   map[int64][]cartdom.Item{},
		prices:  map[int64]float64{42: 9.5, 7: 3},
		failDel: map[int64]bool{},
	}
}

func (g *fakeCartGateway) Cart(_ context.Context, sessionID, _ int64) ([]cartdom.Item, error) {
	if g.onCart != nil {
		g.onCart()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "GET")
	if g.failGet {
		return nil, errBoom
	}
	return append([]cartdom.Item(nil), g.carts[sessionID]...), nil
}

func (g *fakeCartGateway) AddCartItem(_ context.Context, req cartdom.AddRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "POST")
	if g.failAdd {
		return errBoom
	}
	g.nextID++
	price := g.prices[req.StockID]
	g.carts[req.SessionID] = append(g.carts[req.SessionID], cartdom.Item{
		ID:       g.nextID,
		StockID:  req.StockID,
		Name:     "stock",
		Price:    price,
		SumPrice: cartdom.LineTotal(price, req.Quantity),
		Quantity: req.Quantity,
	})
	return nil
}

func (g *fakeCartGateway) UpdateCartItem(_ context.Context, req cartdom.UpdateRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "PUT")
	if g.failUpd {
		return errBoom
	}
	for sid, items := range g.carts {
		for i := range items {
			if items[i].ID == req.ID {
				items[i].Quantity = req.Quantity
				items[i].SumPrice = cartdom.LineTotal(items[i].Price, req.Quantity)
				g.carts[sid] = items
				return nil
			}
		}
	}
	return errors.New("not found")
}

func (g *fakeCartGateway) DeleteCartItem(_ context.Context, req cartdom.DeleteRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "DELETE")
	if g.failDel[req.ID] {
		return errBoom
	}
	for sid, items := range g.carts {
		for i := range items {
			if items[i].ID == req.ID {
				g.carts[sid] = append(items[:i:i], items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (g *fakeCartGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

type staticSession struct {
	sid string
	ok  bool
}

func (s staticSession) SessionID() (string, bool) { return s.sid, s.ok }

type fakeCatalog struct {
	groups    []catalogdom.Group
	stocks    []catalogdom.Stock
	failGroup bool
	order     []string
	lastQuery catalogdom.StocksQuery
}

func (c *fakeCatalog) Groups(context.Context) ([]catalogdom.Group, error) {
	c.order = append(c.order, "groups")
	if c.failGroup {
		return nil, errBoom
	}
	return c.groups, nil
}

func (c *fakeCatalog) Products(_ context.Context, q catalogdom.StocksQuery) ([]catalogdom.Stock, error) {
	c.order = append(c.order, "products")
	c.lastQuery = q
	return c.stocks, nil
}

type fakeAPIAuth struct {
	token string
	err   error
	got   []sessiondom.APICredentials
}

func (a *fakeAPIAuth) Login(_ context.Context, creds sessiondom.APICredentials) (string, error) {
	a.got = append(a.got, creds)
	return a.token, a.err
}

type fakeIdentity struct {
	accounts     map[string]identitydom.Account // by id token
	signInErr    error
	signUpErr    error
	updateErr    error
	signUpName   string
	displayNames []string
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string, displayName string) (identitydom.Account, error) {
	if f.signUpErr != nil {
		return identitydom.Account{}, f.signUpErr
	}
	f.signUpName = displayName
	return identitydom.Account{UID: "new-uid", Email: email, DisplayName: displayName, IDToken: "new-id-token"}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (identitydom.Account, error) {
	if f.signInErr != nil {
		return identitydom.Account{}, f.signInErr
	}
	return identitydom.Account{UID: "uid-1", Email: email, IDToken: "id-token-1"}, nil
}

func (f *fakeIdentity) LookupAccount(_ context.Context, idToken string) (identitydom.Account, error) {
	a, ok := f.accounts[idToken]
	if !ok {
		return identitydom.Account{}, &identitydom.Error{Code: identitydom.CodeInvalidCredential}
	}
	return a, nil
}

func (f *fakeIdentity) UpdateDisplayName(_ context.Context, _ string, displayName string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.displayNames = append(f.displayNames, displayName)
	return nil
}

type fakeProfiles struct {
	mu    sync.Mutex
	docs  map[string]profiledom.Profile
	order *[]string
}

func (r *fakeProfiles) GetByUID(_ context.Context, uid string) (profiledom.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[uid]
	if !ok {
		return profiledom.Profile{}, profiledom.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfiles) Save(_ context.Context, uid string, p profiledom.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.order != nil {
		*r.order = append(*r.order, "save")
	}
	r.docs[uid] = p
	return nil
}

type fakeAvatars struct {
	urls      map[string]string
	failURL   bool
	failWrite bool
	order     *[]string
}

func (a *fakeAvatars) Upload(_ context.Context, uid string, up profiledom.AvatarUpload) (string, error) {
	if a.order != nil {
		*a.order = append(*a.order, "upload")
	}
	if a.failWrite {
		return "", errBoom
	}
	if _, err := io.ReadAll(up.Body); err != nil {
		return "", err
	}
	u := "https://storage.example/avatars/" + uid + "/avatar.jpg"
	a.urls[uid] = u
	return u, nil
}

func (a *fakeAvatars) URL(_ context.Context, uid string) (string, bool, error) {
	if a.failURL {
		return "", false, errBoom
	}
	u, ok := a.urls[uid]
	return u, ok, nil
}

type tokenOnly struct{ token string }

func (t tokenOnly) IdentityToken() (string, bool) { return t.token, t.token != "" }
