// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"
	"strings"

	fsout "storefront/internal/adapters/out/firestore"
	gcsout "storefront/internal/adapters/out/gcs"
	httpout "storefront/internal/adapters/out/http"
	identityout "storefront/internal/adapters/out/identity"
	"storefront/internal/adapters/out/securestore"
	"storefront/internal/application/usecase"
	identitydom "storefront/internal/domain/identity"
	sessiondom "storefront/internal/domain/session"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/secrets"
)

// Container wires every component. Nothing is global: front ends hold a
// Container and reach the session and cart through it.
type Container struct {
	Config *appcfg.Config
	Infra  *Infra

	Store  sessiondom.CredentialStore
	Tokens httpout.TokenSource
	API    *httpout.StoreAPIClient

	// Identity is nil when no Firebase API key is configured.
	Identity identitydom.Provider

	Session *usecase.SessionUsecase
	Cart    *usecase.CartUsecase
	Auth    *usecase.AuthUsecase
	Catalog *usecase.CatalogUsecase
	// Profile is nil without a hosted backend or identity provider.
	Profile *usecase.ProfileUsecase

	unsubscribe []func()
}

// Option customizes NewContainer (tests, alternative front ends).
type Option func(*options)

type options struct {
	store    sessiondom.CredentialStore
	identity identitydom.Provider
	skipGCP  bool
}

// WithCredentialStore replaces the configured credential store.
func WithCredentialStore(s sessiondom.CredentialStore) Option {
	return func(o *options) { o.store = s }
}

// WithIdentityProvider replaces the Firebase identity adapter.
func WithIdentityProvider(p identitydom.Provider) Option {
	return func(o *options) { o.identity = p }
}

// WithoutHostedBackend skips every GCP client.
func WithoutHostedBackend() Option {
	return func(o *options) { o.skipGCP = true }
}

func NewContainer(ctx context.Context, cfg *appcfg.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		cfg = appcfg.Load()
	}
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	c := &Container{Config: cfg}

	// infra
	if o.skipGCP {
		c.Infra = &Infra{Config: cfg}
	} else {
		inf, err := NewInfra(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.Infra = inf
	}

	// credential store
	c.Store = o.store
	if c.Store == nil {
		st, err := securestore.New(securestore.Options{
			Backend: cfg.CredentialStore,
			Service: cfg.KeyringService,
			Path:    cfg.CredentialFile,
			KeyPath: cfg.CredentialKeyFile,
		})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("di: credential store: %w", err)
		}
		c.Store = st
	}
	log.Printf("[di] credential store=%s", storeName(cfg, o.store != nil))

	// session
	c.Session = usecase.NewSessionUsecase(c.Store)

	// gateway
	var tokens httpout.TokenSource = httpout.NewStoreTokenSource(c.Store)
	if cfg.TokenCache {
		cached := httpout.NewCachedTokenSource(tokens)
		c.unsubscribe = append(c.unsubscribe, c.Session.OnWrite(cached.Invalidate))
		tokens = cached
	}
	c.Tokens = tokens
	c.API = httpout.NewStoreAPIClient(cfg.APIBaseURL, cfg.HTTPTimeout, tokens)

	// cart follows the session: a different session id drops the local mirror
	c.Cart = usecase.NewCartUsecase(c.API, c.Session)
	lastSID := ""
	c.unsubscribe = append(c.unsubscribe, c.Session.Subscribe(func(st sessiondom.State) {
		sid := st.SessionID.Default("")
		if sid != lastSID {
			lastSID = sid
			c.Cart.Reset()
		}
	}))

	c.Catalog = usecase.NewCatalogUsecase(c.API)

	// identity
	if o.identity != nil {
		c.Identity = o.identity
	} else if p := c.buildIdentity(ctx); p != nil {
		c.Identity = p
	}

	c.Auth = usecase.NewAuthUsecase(c.API, c.Identity, c.Session, sessiondom.APICredentials{
		Email:    strings.TrimSpace(cfg.APIEmail),
		Username: strings.TrimSpace(cfg.APIUsername),
	})

	// profile
	if c.Infra.Firestore != nil && c.Identity != nil {
		repo := fsout.NewProfileRepositoryFS(c.Infra.Firestore, cfg.ProfilesCollection)
		var avatars *gcsout.AvatarRepositoryGCS
		if c.Infra.GCS != nil && strings.TrimSpace(cfg.AvatarBucket) != "" {
			avatars = gcsout.NewAvatarRepositoryGCS(c.Infra.GCS, cfg.AvatarBucket)
		}
		if avatars != nil {
			c.Profile = usecase.NewProfileUsecase(repo, avatars, c.Identity, c.Session)
		} else {
			c.Profile = usecase.NewProfileUsecase(repo, nil, c.Identity, c.Session)
		}
	}

	return c, nil
}

// buildIdentity returns nil when no API key can be resolved.
func (c *Container) buildIdentity(ctx context.Context) *identityout.FirebaseProvider {
	cfg := c.Config
	key := strings.TrimSpace(cfg.FirebaseAPIKey)
	if key == "" && strings.TrimSpace(cfg.FirebaseAPIKeySecret) != "" {
		v, err := secrets.NewResolver(c.Infra.SecretManager, c.Infra.ProjectID).Resolve(ctx, cfg.FirebaseAPIKeySecret)
		if err != nil {
			log.Printf("[di] WARN: firebase api key secret: %v", err)
		}
		key = v
	}
	if key == "" {
		log.Printf("[di] identity provider not configured (FIREBASE_API_KEY empty)")
		return nil
	}

	p, err := identityout.NewFirebaseProvider(ctx, identityout.Options{
		APIKey:   key,
		Endpoint: cfg.IdentityEndpoint,
		Admin:    c.Infra.FirebaseAuth,
	})
	if err != nil {
		log.Printf("[di] WARN: identity provider init failed: %v", err)
		return nil
	}
	return p
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
	return c.Infra.Close()
}

func storeName(cfg *appcfg.Config, injected bool) string {
	if injected {
		return "injected"
	}
	if b := strings.TrimSpace(cfg.CredentialStore); b != "" {
		return b
	}
	return securestore.BackendKeyring
}
