// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	cartdom "storefront/internal/domain/cart"
	sessiondom "storefront/internal/domain/session"
)

// User-facing cart messages. One per failing operation kind.
const (
	MsgCartLoadFailed     = "Could not load the cart."
	MsgCartAddFailed      = "Could not add the item to the cart."
	MsgCartUpdateFailed   = "Could not update the quantity."
	MsgCartRemoveFailed   = "Could not remove the item from the cart."
	MsgCartCheckoutFailed = "Some items could not be checked out."
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartItemNotFound    = errors.New("cart_usecase: cart line not found")
)

// SessionIDSource exposes the current session id (nil-safe for tests).
type SessionIDSource interface {
	SessionID() (string, bool)
}

// CartUsecase mirrors the server-held cart for the current session.
//
// Operations go through a single-slot queue: a mutation and the refresh that
// follows it complete before the next operation starts, so an older fetch can
// never overwrite a newer mutation's result.
type CartUsecase struct {
	gw       cartdom.Gateway
	sessions SessionIDSource

	customerID int64
	queue      *semaphore.Weighted

	mu    sync.RWMutex
	state cartdom.State
	// gen is bumped by Reset; a fetch started under an older gen is discarded.
	gen     uint64
	subs    map[int]func(cartdom.State)
	nextSub int
}

func NewCartUsecase(gw cartdom.Gateway, sessions SessionIDSource) *CartUsecase {
	return &CartUsecase{
		gw:       gw,
		sessions: sessions,
		queue:    semaphore.NewWeighted(1),
		state:    cartdom.Empty(),
		subs:     map[int]func(cartdom.State){},
	}
}

// ============================================================
// Queries
// ============================================================

// FetchCart replaces the items with the server's view. Without a session it does nothing.
// Gateway failures land in State().Error; the returned error only reports that
// the queue could not be entered (ctx done).
func (uc *CartUsecase) FetchCart(ctx context.Context) error {
	if err := uc.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer uc.queue.Release(1)

	uc.fetchLocked(ctx)
	return nil
}

func (uc *CartUsecase) fetchLocked(ctx context.Context) {
	sid, ok := uc.sessionID()
	if !ok {
		return
	}

	var started uint64
	uc.update(func(s *cartdom.State) {
		started = uc.gen
		s.Loading = true
		s.Error = ""
	})

	// loading is cleared in the same publish as the outcome, on every path
	apply := func(*cartdom.State) {}
	defer func() {
		uc.update(func(s *cartdom.State) {
			if uc.gen != started {
				log.Printf("[cart] dropping fetch result for sessionID=%d: cart was reset", sid)
				return
			}
			apply(s)
			s.Loading = false
		})
	}()

	items, err := uc.gw.Cart(ctx, sid, uc.customerID)
	if err != nil {
		log.Printf("[cart] fetch failed sessionID=%d err=%v", sid, err)
		apply = func(s *cartdom.State) { s.Error = MsgCartLoadFailed }
		return
	}
	for _, it := range items {
		if verr := it.Validate(); verr != nil {
			log.Printf("[cart] WARN: server returned invalid line id=%d: %v", it.ID, verr)
		}
	}
	if items == nil {
		items = []cartdom.Item{}
	}
	apply = func(s *cartdom.State) {
		s.Items = items
		s.Error = ""
	}
}

// State returns a snapshot of the cart.
func (uc *CartUsecase) State() cartdom.State {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state.Clone()
}

// Total is the sum of line totals of the current snapshot.
func (uc *CartUsecase) Total() float64 {
	return uc.State().Total()
}

// Subscribe registers fn for every cart change, starting with the current snapshot.
func (uc *CartUsecase) Subscribe(fn func(cartdom.State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	uc.mu.Lock()
	id := uc.nextSub
	uc.nextSub++
	uc.subs[id] = fn
	cur := uc.state.Clone()
	uc.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			uc.mu.Lock()
			delete(uc.subs, id)
			uc.mu.Unlock()
		})
	}
}

// ============================================================
// Commands
// ============================================================

// AddToCart adds stockID to the session's cart and refreshes once.
// quantity 0 means 1. Without a session it does nothing.
func (uc *CartUsecase) AddToCart(ctx context.Context, stockID int64, quantity int) error {
	if stockID <= 0 || quantity < 0 {
		return ErrCartInvalidArgument
	}
	if quantity == 0 {
		quantity = 1
	}

	return uc.run(ctx, func(ctx context.Context) error {
		sid, ok := uc.sessionID()
		if !ok {
			return nil
		}
		if err := uc.gw.AddCartItem(ctx, cartdom.NewAddRequest(sid, stockID, quantity)); err != nil {
			log.Printf("[cart] add failed stockID=%d qty=%d err=%v", stockID, quantity, err)
			uc.setError(MsgCartAddFailed)
			return fmt.Errorf("cart_usecase: add: %w", err)
		}
		uc.fetchLocked(ctx)
		return nil
	})
}

// UpdateQuantity sets a line's quantity as given and refreshes once.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	return uc.run(ctx, func(ctx context.Context) error {
		return uc.updateLocked(ctx, lineID, quantity)
	})
}

// IncreaseQuantity adds one to a line.
func (uc *CartUsecase) IncreaseQuantity(ctx context.Context, lineID int64) error {
	return uc.run(ctx, func(ctx context.Context) error {
		it, ok := uc.State().Find(lineID)
		if !ok {
			return ErrCartItemNotFound
		}
		return uc.updateLocked(ctx, lineID, it.Quantity+1)
	})
}

// DecreaseQuantity removes one from a line. A line at quantity 1 is left as is.
func (uc *CartUsecase) DecreaseQuantity(ctx context.Context, lineID int64) error {
	return uc.run(ctx, func(ctx context.Context) error {
		it, ok := uc.State().Find(lineID)
		if !ok {
			return ErrCartItemNotFound
		}
		if !it.CanDecrease() {
			return nil
		}
		return uc.updateLocked(ctx, lineID, it.Quantity-1)
	})
}

func (uc *CartUsecase) updateLocked(ctx context.Context, lineID int64, quantity int) error {
	if err := uc.gw.UpdateCartItem(ctx, cartdom.UpdateRequest{ID: lineID, Quantity: quantity}); err != nil {
		log.Printf("[cart] update failed id=%d qty=%d err=%v", lineID, quantity, err)
		uc.setError(MsgCartUpdateFailed)
		return fmt.Errorf("cart_usecase: update: %w", err)
	}
	uc.fetchLocked(ctx)
	return nil
}

// RemoveItem deletes a line and refreshes once.
func (uc *CartUsecase) RemoveItem(ctx context.Context, lineID int64) error {
	return uc.run(ctx, func(ctx context.Context) error {
		if err := uc.gw.DeleteCartItem(ctx, cartdom.DeleteRequest{ID: lineID}); err != nil {
			log.Printf("[cart] remove failed id=%d err=%v", lineID, err)
			uc.setError(MsgCartRemoveFailed)
			return fmt.Errorf("cart_usecase: remove: %w", err)
		}
		uc.fetchLocked(ctx)
		return nil
	})
}

// Checkout clears the cart line by line. A failed line does not stop the rest;
// the cart is refreshed once at the end and all failures are returned joined.
func (uc *CartUsecase) Checkout(ctx context.Context) error {
	return uc.run(ctx, func(ctx context.Context) error {
		items := uc.State().Items
		if len(items) == 0 {
			return nil
		}

		var errs []error
		for _, it := range items {
			if err := uc.gw.DeleteCartItem(ctx, cartdom.DeleteRequest{ID: it.ID}); err != nil {
				log.Printf("[cart] checkout: remove failed id=%d err=%v", it.ID, err)
				errs = append(errs, fmt.Errorf("line %d: %w", it.ID, err))
			}
		}

		uc.fetchLocked(ctx)

		if len(errs) > 0 {
			uc.setError(MsgCartCheckoutFailed)
			return fmt.Errorf("cart_usecase: checkout: %w", errors.Join(errs...))
		}
		log.Printf("[cart] checkout ok lines=%d", len(items))
		return nil
	})
}

// Reset drops the local mirror. Called when the session changes.
// It does not wait for the queue; a fetch already in flight is discarded when it lands.
func (uc *CartUsecase) Reset() {
	uc.update(func(s *cartdom.State) {
		uc.gen++
		*s = cartdom.Empty()
	})
}

// ============================================================
// Helpers
// ============================================================

func (uc *CartUsecase) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := uc.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer uc.queue.Release(1)
	return fn(ctx)
}

// sessionID returns the numeric session id; blank or malformed ids count as no session.
func (uc *CartUsecase) sessionID() (int64, bool) {
	if uc == nil || uc.sessions == nil {
		return 0, false
	}
	raw, ok := uc.sessions.SessionID()
	if !ok {
		return 0, false
	}
	n, err := sessiondom.NumericSessionID(raw)
	if err != nil {
		log.Printf("[cart] WARN: ignoring malformed session id %q: %v", raw, err)
		return 0, false
	}
	return n, true
}

func (uc *CartUsecase) setError(msg string) {
	uc.update(func(s *cartdom.State) { s.Error = msg })
}

func (uc *CartUsecase) update(fn func(s *cartdom.State)) {
	uc.mu.Lock()
	next := uc.state.Clone()
	fn(&next)
	uc.state = next
	snap := next.Clone()
	fns := make([]func(cartdom.State), 0, len(uc.subs))
	for _, f := range uc.subs {
		fns = append(fns, f)
	}
	uc.mu.Unlock()

	for _, f := range fns {
		f(snap)
	}
}
