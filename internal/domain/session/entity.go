// internal/domain/session/entity.go
package session

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/types/optional"
)

var (
	ErrInvalidState = errors.New("session: invalid state")
)

// Status is the coarse position of a device session in the state machine.
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusGuest
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusGuest:
		return "guest"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the in-memory authentication state published by the session container.
//
// Invariants:
//   - Authenticated implies APIToken and SessionID are present.
//   - Guest implies APIToken and SessionID are absent.
//   - Authenticated and Guest are never both true.
type State struct {
	APIToken      optional.Option[string]
	IdentityToken optional.Option[string]
	SessionID     optional.Option[string]

	Authenticated bool
	Guest         bool
	Loading       bool
}

// Loading is the transient state occupied until the persisted values are read.
func Loading() State {
	return State{Loading: true}
}

func Anonymous() State {
	return State{}
}

func Guest() State {
	return State{Guest: true}
}

// Authenticated builds the signed-in state. identityToken may be empty.
func Authenticated(apiToken, identityToken, sessionID string) State {
	return State{
		APIToken:      present(apiToken),
		IdentityToken: present(identityToken),
		SessionID:     present(sessionID),
		Authenticated: true,
	}
}

func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Authenticated:
		return StatusAuthenticated
	case s.Guest:
		return StatusGuest
	default:
		return StatusAnonymous
	}
}

// Validate checks the state invariants.
func (s State) Validate() error {
	if s.Authenticated && s.Guest {
		return ErrInvalidState
	}
	if s.Authenticated && (!s.APIToken.Ok() || !s.SessionID.Ok()) {
		return ErrInvalidState
	}
	if s.Guest && (s.APIToken.Ok() || s.SessionID.Ok()) {
		return ErrInvalidState
	}
	return nil
}

// Stored is the raw view of the credential store at startup.
type Stored struct {
	APIToken      optional.Option[string]
	IdentityToken optional.Option[string]
	SessionID     optional.Option[string]
	GuestMode     bool
}

// Resolve applies the startup decision table:
//
//	token ∧ sessionID        -> authenticated
//	otherwise, guest flag    -> guest
//	otherwise                -> anonymous
func Resolve(st Stored) State {
	token, hasToken := st.APIToken.Get()
	sid, hasSID := st.SessionID.Get()
	if hasToken && hasSID && strings.TrimSpace(token) != "" && strings.TrimSpace(sid) != "" {
		idt, _ := st.IdentityToken.Get()
		return Authenticated(token, idt, sid)
	}
	if st.GuestMode {
		return Guest()
	}
	return Anonymous()
}

// ParseGuestFlag reads the persisted guest flag. Anything but "true" is false.
func ParseGuestFlag(v optional.Option[string]) bool {
	s, ok := v.Get()
	return ok && strings.TrimSpace(s) == "true"
}

// FormatGuestFlag is the persisted form of the guest flag.
func FormatGuestFlag(guest bool) string {
	return strconv.FormatBool(guest)
}

// NewSessionID returns a millisecond timestamp id that is strictly greater than last
// (when last parses as a number). Uniqueness within one device is all that is needed.
func NewSessionID(now time.Time, last string) string {
	id := now.UnixMilli()
	if prev, err := strconv.ParseInt(strings.TrimSpace(last), 10, 64); err == nil && id <= prev {
		id = prev + 1
	}
	return strconv.FormatInt(id, 10)
}

// NumericSessionID converts the stored id to the numeric form the storefront API expects.
func NumericSessionID(sid string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(sid), 10, 64)
	if err != nil {
		return 0, errors.New("session: session id is not numeric")
	}
	return n, nil
}

func present(v string) optional.Option[string] {
	if strings.TrimSpace(v) == "" {
		return optional.None[string]()
	}
	return optional.Some(v)
}
