// internal/domain/session/store_port.go
package session

import (
	"context"
	"errors"

	"github.com/alecthomas/types/optional"
)

// Persisted key names. They match the keys the mobile app writes to secure storage.
const (
	KeyAPIToken      = "auth_token"
	KeyIdentityToken = "firebase_auth_token"
	KeySessionID     = "session_id"
	KeyGuestMode     = "is_guest_mode"
)

// AllKeys lists every key owned by the session container.
var AllKeys = []string{KeyAPIToken, KeyIdentityToken, KeySessionID, KeyGuestMode}

var ErrStoreUnavailable = errors.New("session: credential store unavailable")

// CredentialStore is the secure key-value storage port.
//
// Policy:
//   - Get returns None (and nil error) for a missing key.
//   - Delete of a missing key is not an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (optional.Option[string], error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
