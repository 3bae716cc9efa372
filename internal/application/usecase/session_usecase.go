// internal/application/usecase/session_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	sessiondom "storefront/internal/domain/session"
)

var (
	ErrSessionInvalidArgument = errors.New("session_usecase: invalid argument")
)

// SessionUsecase is the single source of truth for whether this device's user is
// authenticated, a guest, or neither. It owns every write to the credential store.
//
// Transitions are serialized; State() may be read from any goroutine.
type SessionUsecase struct {
	store sessiondom.CredentialStore
	clock Clock

	// mu serializes Initialize and every transition (store I/O included).
	mu          sync.Mutex
	initialized bool
	lastSID     string

	stateMu sync.RWMutex
	state   sessiondom.State
	subs    map[int]func(sessiondom.State)
	nextSub int

	// write hooks run after every credential store write, published or not
	writeHooks map[int]func()
}

func NewSessionUsecase(store sessiondom.CredentialStore) *SessionUsecase {
	return NewSessionUsecaseWithClock(store, nil)
}

// NewSessionUsecaseWithClock is useful for tests.
func NewSessionUsecaseWithClock(store sessiondom.CredentialStore, clock Clock) *SessionUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &SessionUsecase{
		store: store,
		clock: clock,
		state: sessiondom.Loading(),
		subs:  map[int]func(sessiondom.State){},

		writeHooks: map[int]func(){},
	}
}

// Initialize resolves the state from the credential store. It runs once; later calls
// (or calls after any transition) return the current state without reading the store.
// Read failures resolve to anonymous.
func (uc *SessionUsecase) Initialize(ctx context.Context) sessiondom.State {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.initialized {
		return uc.State()
	}
	uc.initialized = true

	st := sessiondom.Anonymous()
	stored, err := uc.readStored(ctx)
	if err != nil {
		log.Printf("[session] WARN: credential store read failed: %v (falling back to anonymous)", err)
	} else {
		st = sessiondom.Resolve(stored)
	}
	if sid, ok := st.SessionID.Get(); ok {
		uc.lastSID = sid
	}

	uc.publish(st)
	log.Printf("[session] initialized status=%s", st.Status())
	return st
}

func (uc *SessionUsecase) readStored(ctx context.Context) (sessiondom.Stored, error) {
	var out sessiondom.Stored
	var err error

	if out.APIToken, err = uc.store.Get(ctx, sessiondom.KeyAPIToken); err != nil {
		return sessiondom.Stored{}, err
	}
	if out.IdentityToken, err = uc.store.Get(ctx, sessiondom.KeyIdentityToken); err != nil {
		return sessiondom.Stored{}, err
	}
	if out.SessionID, err = uc.store.Get(ctx, sessiondom.KeySessionID); err != nil {
		return sessiondom.Stored{}, err
	}
	guest, err := uc.store.Get(ctx, sessiondom.KeyGuestMode)
	if err != nil {
		return sessiondom.Stored{}, err
	}
	out.GuestMode = sessiondom.ParseGuestFlag(guest)
	return out, nil
}

// Login persists a new authenticated session and publishes it.
// When persistence fails the error is returned and nothing is published.
func (uc *SessionUsecase) Login(ctx context.Context, apiToken, identityToken string) error {
	apiToken = strings.TrimSpace(apiToken)
	identityToken = strings.TrimSpace(identityToken)
	if apiToken == "" {
		return ErrSessionInvalidArgument
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	sid := sessiondom.NewSessionID(uc.clock.Now(), uc.lastSID)

	if err := uc.set(ctx, sessiondom.KeyAPIToken, apiToken); err != nil {
		return fmt.Errorf("session_usecase: login: save token: %w", err)
	}
	if identityToken != "" {
		if err := uc.set(ctx, sessiondom.KeyIdentityToken, identityToken); err != nil {
			return fmt.Errorf("session_usecase: login: save identity token: %w", err)
		}
	} else if err := uc.del(ctx, sessiondom.KeyIdentityToken); err != nil {
		return fmt.Errorf("session_usecase: login: clear identity token: %w", err)
	}
	if err := uc.set(ctx, sessiondom.KeySessionID, sid); err != nil {
		return fmt.Errorf("session_usecase: login: save session id: %w", err)
	}
	if err := uc.del(ctx, sessiondom.KeyGuestMode); err != nil {
		return fmt.Errorf("session_usecase: login: clear guest flag: %w", err)
	}

	uc.lastSID = sid
	uc.initialized = true
	uc.publish(sessiondom.Authenticated(apiToken, identityToken, sid))
	log.Printf("[session] login ok sessionID=%s tokenLen=%d", sid, len(apiToken))
	return nil
}

// Logout deletes every persisted session value and publishes anonymous.
// It is idempotent. Every key is attempted; failures are joined and returned,
// and the anonymous state is published regardless.
func (uc *SessionUsecase) Logout(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var errs []error
	for _, k := range sessiondom.AllKeys {
		if err := uc.del(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", k, err))
		}
	}

	uc.initialized = true
	uc.publish(sessiondom.Anonymous())

	if len(errs) > 0 {
		log.Printf("[session] WARN: logout left %d key(s) behind", len(errs))
		return fmt.Errorf("session_usecase: logout: %w", errors.Join(errs...))
	}
	log.Printf("[session] logout ok")
	return nil
}

// ContinueAsGuest marks the device as guest. A guest has no server session,
// so the session id and identity token are removed.
func (uc *SessionUsecase) ContinueAsGuest(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.set(ctx, sessiondom.KeyGuestMode, sessiondom.FormatGuestFlag(true)); err != nil {
		return fmt.Errorf("session_usecase: guest: save guest flag: %w", err)
	}
	if err := uc.del(ctx, sessiondom.KeySessionID); err != nil {
		return fmt.Errorf("session_usecase: guest: clear session id: %w", err)
	}
	if err := uc.del(ctx, sessiondom.KeyIdentityToken); err != nil {
		return fmt.Errorf("session_usecase: guest: clear identity token: %w", err)
	}

	uc.initialized = true
	uc.publish(sessiondom.Guest())
	log.Printf("[session] continuing as guest")
	return nil
}

// EstablishAnonymousSession persists an API token and a fresh session id without
// changing the published state. The gateway reads the token from the store, so
// catalog calls work before (and without) an authenticated session.
func (uc *SessionUsecase) EstablishAnonymousSession(ctx context.Context, apiToken string) (string, error) {
	apiToken = strings.TrimSpace(apiToken)
	if apiToken == "" {
		return "", ErrSessionInvalidArgument
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	sid := sessiondom.NewSessionID(uc.clock.Now(), uc.lastSID)
	if err := uc.set(ctx, sessiondom.KeyAPIToken, apiToken); err != nil {
		return "", fmt.Errorf("session_usecase: api session: save token: %w", err)
	}
	if err := uc.set(ctx, sessiondom.KeySessionID, sid); err != nil {
		return "", fmt.Errorf("session_usecase: api session: save session id: %w", err)
	}
	uc.lastSID = sid
	return sid, nil
}

// ----------------------------
// Read side
// ----------------------------

// State returns the current published state.
func (uc *SessionUsecase) State() sessiondom.State {
	uc.stateMu.RLock()
	defer uc.stateMu.RUnlock()
	return uc.state
}

// SessionID returns the published session id, if any.
func (uc *SessionUsecase) SessionID() (string, bool) {
	return uc.State().SessionID.Get()
}

// IdentityToken returns the published identity token, if any.
func (uc *SessionUsecase) IdentityToken() (string, bool) {
	return uc.State().IdentityToken.Get()
}

// Subscribe registers fn to receive every published state, starting with the current one.
// The returned func removes the subscription.
func (uc *SessionUsecase) Subscribe(fn func(sessiondom.State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	uc.stateMu.Lock()
	id := uc.nextSub
	uc.nextSub++
	uc.subs[id] = fn
	cur := uc.state
	uc.stateMu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			uc.stateMu.Lock()
			delete(uc.subs, id)
			uc.stateMu.Unlock()
		})
	}
}

// OnWrite registers fn to run after every credential store write or delete made by
// this container, including writes that do not change the published state.
// fn runs while a transition holds the container lock and must not call back into it.
func (uc *SessionUsecase) OnWrite(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	uc.stateMu.Lock()
	id := uc.nextSub
	uc.nextSub++
	uc.writeHooks[id] = fn
	uc.stateMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			uc.stateMu.Lock()
			delete(uc.writeHooks, id)
			uc.stateMu.Unlock()
		})
	}
}

// set and del notify write hooks even on failure: a failed write may still have
// changed what the store holds.
func (uc *SessionUsecase) set(ctx context.Context, key, value string) error {
	defer uc.notifyWrite()
	return uc.store.Set(ctx, key, value)
}

func (uc *SessionUsecase) del(ctx context.Context, key string) error {
	defer uc.notifyWrite()
	return uc.store.Delete(ctx, key)
}

func (uc *SessionUsecase) notifyWrite() {
	uc.stateMu.RLock()
	fns := make([]func(), 0, len(uc.writeHooks))
	for _, fn := range uc.writeHooks {
		fns = append(fns, fn)
	}
	uc.stateMu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (uc *SessionUsecase) publish(st sessiondom.State) {
	if err := st.Validate(); err != nil {
		// Constructors above never build an invalid state; this guards future edits.
		log.Printf("[session] ERROR: refusing to publish invalid state: %v", err)
		return
	}

	uc.stateMu.Lock()
	uc.state = st
	fns := make([]func(sessiondom.State), 0, len(uc.subs))
	for _, fn := range uc.subs {
		fns = append(fns, fn)
	}
	uc.stateMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
