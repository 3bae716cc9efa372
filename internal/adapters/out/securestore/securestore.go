// internal/adapters/out/securestore/securestore.go
package securestore

import (
	"fmt"
	"strings"

	sessiondom "storefront/internal/domain/session"
)

// Backend names accepted by New.
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Service string // keyring
	Path    string // file
	KeyPath string // file
}

// New builds the configured credential store.
func New(o Options) (sessiondom.CredentialStore, error) {
	switch strings.ToLower(strings.TrimSpace(o.Backend)) {
	case "", BackendKeyring:
		return NewKeyringStore(o.Service), nil
	case BackendFile:
		if strings.TrimSpace(o.Path) == "" || strings.TrimSpace(o.KeyPath) == "" {
			return nil, fmt.Errorf("securestore: file backend needs a path and a key path")
		}
		return NewFileStore(o.Path, o.KeyPath), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("securestore: unknown backend %q", o.Backend)
	}
}
