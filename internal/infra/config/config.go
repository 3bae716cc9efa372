// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL  = "http://localhost:8081"
	defaultHTTPTimeout = 15 * time.Second
)

// Config holds every environment-driven setting of both binaries.
type Config struct {
	// Storefront API
	APIBaseURL  string
	APIEmail    string
	APIUsername string
	HTTPTimeout time.Duration

	// Identity provider (Firebase)
	FirebaseAPIKey       string
	FirebaseAPIKeySecret string // Secret Manager secret holding the API key
	IdentityEndpoint     string // optional Identity Toolkit override (emulator)
	FirebaseProjectID    string

	// Hosted backend
	FirestoreProjectID string
	GCPCreds           string
	ProfilesCollection string
	AvatarBucket       string

	// Credential store
	CredentialStore   string // keyring | file | memory
	CredentialFile    string
	CredentialKeyFile string
	KeyringService    string
	TokenCache        bool

	LogFile string

	// Dev API
	Port string
}

// Load reads the environment and returns Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")
	stateDir := defaultStateDir()

	return &Config{
		APIBaseURL:  strings.TrimRight(getenvDefault("STOREFRONT_API_BASE_URL", defaultAPIBaseURL), "/"),
		APIEmail:    os.Getenv("STOREFRONT_API_EMAIL"),
		APIUsername: os.Getenv("STOREFRONT_API_USERNAME"),
		HTTPTimeout: getenvDuration("STOREFRONT_HTTP_TIMEOUT", defaultHTTPTimeout),

		FirebaseAPIKey:       os.Getenv("FIREBASE_API_KEY"),
		FirebaseAPIKeySecret: os.Getenv("FIREBASE_API_KEY_SECRET"),
		IdentityEndpoint:     os.Getenv("IDENTITY_TOOLKIT_ENDPOINT"),
		FirebaseProjectID:    getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		FirestoreProjectID: getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		GCPCreds:           os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		ProfilesCollection: getenvDefault("PROFILES_COLLECTION", "users"),
		AvatarBucket:       os.Getenv("AVATAR_BUCKET"),

		CredentialStore:   getenvDefault("CREDENTIAL_STORE", "keyring"),
		CredentialFile:    getenvDefault("CREDENTIAL_FILE", joinDir(stateDir, "credentials.bin")),
		CredentialKeyFile: getenvDefault("CREDENTIAL_KEY_FILE", joinDir(stateDir, "credentials.key")),
		KeyringService:    getenvDefault("KEYRING_SERVICE", "storefront"),
		TokenCache:        getenvBool("TOKEN_CACHE", false),

		LogFile: os.Getenv("STOREFRONT_LOG_FILE"),

		Port: getenvDefault("PORT", "8081"),
	}
}

// HostedBackendConfigured reports whether profile/avatar storage can be wired.
func (c *Config) HostedBackendConfigured() bool {
	return c != nil && strings.TrimSpace(c.FirestoreProjectID) != ""
}

// IdentityConfigured reports whether an API key (or a secret holding one) is set.
func (c *Config) IdentityConfigured() bool {
	return c != nil && (strings.TrimSpace(c.FirebaseAPIKey) != "" || strings.TrimSpace(c.FirebaseAPIKeySecret) != "")
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("15s") or plain seconds ("15").
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return dir + string(os.PathSeparator) + "storefront"
	}
	return ".storefront"
}

func joinDir(dir, name string) string {
	return dir + string(os.PathSeparator) + name
}
