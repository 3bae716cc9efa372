// internal/adapters/out/securestore/file_store.go
package securestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/alecthomas/types/optional"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	sessiondom "storefront/internal/domain/session"
)

const (
	masterKeyLen = 32
	hkdfInfo     = "storefront-credential-file"
)

var ErrCorruptFile = errors.New("securestore: credential file cannot be decrypted")

// FileStore keeps every key in one XChaCha20-Poly1305 sealed JSON object.
// The AEAD key is derived (HKDF-SHA256) from a 32-byte master key file that is
// created on first use with mode 0600.
//
// File layout: nonce (24 bytes) || ciphertext.
type FileStore struct {
	path    string
	keyPath string

	mu      sync.Mutex
	derived []byte // AEAD key; loaded lazily
}

var _ sessiondom.CredentialStore = (*FileStore)(nil)

func NewFileStore(path, keyPath string) *FileStore {
	return &FileStore{path: path, keyPath: keyPath}
}

func (s *FileStore) Get(ctx context.Context, key string) (optional.Option[string], error) {
	if err := ctx.Err(); err != nil {
		return optional.None[string](), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return optional.None[string](), err
	}
	v, ok := m[key]
	if !ok {
		return optional.None[string](), nil
	}
	return optional.Some(v), nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(m)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}

// ------------------------------------------------------------
// file I/O (callers hold mu)
// ------------------------------------------------------------

func (s *FileStore) load() (map[string]string, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", sessiondom.ErrStoreUnavailable, s.path, err)
	}

	// Without its master key the file can never be opened again; start over
	// instead of minting a key that would fail every later load.
	if s.derived == nil {
		if _, err := os.Stat(s.keyPath); errors.Is(err, fs.ErrNotExist) {
			log.Printf("[securestore] WARN: key file %s missing; discarding %s", filepath.Base(s.keyPath), filepath.Base(s.path))
			if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: remove %s: %w", sessiondom.ErrStoreUnavailable, s.path, err)
			}
			return map[string]string{}, nil
		}
	}

	key, err := s.key()
	if err != nil {
		return nil, err
	}
	plain, err := open(key, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	m := map[string]string{}
	if err := json.Unmarshal(plain, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	return m, nil
}

func (s *FileStore) save(m map[string]string) error {
	key, err := s.key()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(m)
	if err != nil {
		return err
	}
	blob, err := seal(key, plain)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, blob); err != nil {
		return fmt.Errorf("%w: write %s: %w", sessiondom.ErrStoreUnavailable, s.path, err)
	}
	return nil
}

func (s *FileStore) key() ([]byte, error) {
	if s.derived != nil {
		return s.derived, nil
	}

	master, err := os.ReadFile(s.keyPath)
	if errors.Is(err, fs.ErrNotExist) {
		master = make([]byte, masterKeyLen)
		if _, err := io.ReadFull(rand.Reader, master); err != nil {
			return nil, err
		}
		if err := writeFileAtomic(s.keyPath, master); err != nil {
			return nil, fmt.Errorf("%w: write key %s: %w", sessiondom.ErrStoreUnavailable, s.keyPath, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: read key %s: %w", sessiondom.ErrStoreUnavailable, s.keyPath, err)
	}
	if len(master) != masterKeyLen {
		return nil, fmt.Errorf("securestore: key file %s must hold %d bytes, got %d", s.keyPath, masterKeyLen, len(master))
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, err
	}
	s.derived = derived
	return derived, nil
}

func seal(key, plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func open(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ct, nil)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
