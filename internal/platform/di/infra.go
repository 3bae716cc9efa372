// internal/platform/di/infra.go
package di

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
)

// Infra owns the hosted-backend clients.
//
// The storefront runs without a hosted backend (no project configured): every
// client stays nil and profile features are disabled.
// With a project, Firestore/GCS are strict (return error) and
// Firebase Auth / Secret Manager are best-effort (warn + continue).
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	GCS           *storage.Client
	SecretManager *secretmanager.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
}

func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		cfg = appcfg.Load()
	}
	inf := &Infra{Config: cfg, ProjectID: resolveProjectID(cfg)}

	var clientOpts []option.ClientOption
	if credFile := strings.TrimSpace(cfg.GCPCreds); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	}

	// Secret Manager (best-effort); only needed when the API key lives there.
	if strings.TrimSpace(cfg.FirebaseAPIKeySecret) != "" {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: secretmanager.NewClient failed: %v (FIREBASE_API_KEY_SECRET cannot be resolved)", err)
		} else {
			inf.SecretManager = sm
		}
	}

	if inf.ProjectID == "" {
		log.Printf("[di.infra] no GCP project configured; profile storage disabled")
		return inf, nil
	}

	// Firestore (strict)
	fsClient, err := firestore.NewClient(ctx, inf.ProjectID, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("di.infra: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
	}
	inf.Firestore = fsClient
	log.Printf("[di.infra] Firestore connected project=%s", inf.ProjectID)

	// GCS (strict)
	gcsClient, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("di.infra: storage.NewClient failed: %w", err)
	}
	inf.GCS = gcsClient
	if strings.TrimSpace(cfg.AvatarBucket) == "" {
		log.Printf("[di.infra] WARN: AVATAR_BUCKET is empty (avatar features will fail)")
	}

	// Firebase App/Auth (best-effort)
	fbProject := strings.TrimSpace(cfg.FirebaseProjectID)
	if fbProject == "" {
		fbProject = inf.ProjectID
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbProject}, clientOpts...)
	if err != nil {
		log.Printf("[di.infra] WARN: firebase app init failed: %v", err)
		return inf, nil
	}
	inf.FirebaseApp = fbApp
	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		log.Printf("[di.infra] WARN: firebase auth init failed: %v", err)
		return inf, nil
	}
	inf.FirebaseAuth = authClient
	log.Printf("[di.infra] Firebase Auth initialized project=%s", fbProject)

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}
	for _, k := range []string{"GOOGLE_CLOUD_PROJECT", "FIREBASE_PROJECT_ID"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// redactPath keeps only the last path segment.
func redactPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
