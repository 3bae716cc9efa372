// internal/adapters/out/securestore/keyring_store.go
package securestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/types/optional"
	"github.com/zalando/go-keyring"

	sessiondom "storefront/internal/domain/session"
)

// DefaultService is the keyring service every key is stored under.
const DefaultService = "storefront"

// KeyringStore keeps credentials in the OS keychain (macOS Keychain,
// Secret Service on Linux, Credential Manager on Windows).
type KeyringStore struct {
	service string
}

var _ sessiondom.CredentialStore = (*KeyringStore)(nil)

func NewKeyringStore(service string) *KeyringStore {
	service = strings.TrimSpace(service)
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Get(ctx context.Context, key string) (optional.Option[string], error) {
	if err := ctx.Err(); err != nil {
		return optional.None[string](), err
	}
	v, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return optional.None[string](), nil
	}
	if err != nil {
		return optional.None[string](), fmt.Errorf("%w: keyring get %s: %w", sessiondom.ErrStoreUnavailable, key, err)
	}
	return optional.Some(v), nil
}

func (s *KeyringStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("%w: keyring set %s: %w", sessiondom.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Delete treats a missing entry as success.
func (s *KeyringStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(s.service, key)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("%w: keyring delete %s: %w", sessiondom.ErrStoreUnavailable, key, err)
}
