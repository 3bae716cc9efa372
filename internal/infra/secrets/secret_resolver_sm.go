// internal/infra/secrets/secret_resolver_sm.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var ErrResolverNotConfigured = errors.New("secrets: secret manager resolver not configured")

type accessFunc func(ctx context.Context, name string) ([]byte, error)

// Resolver reads secret payloads from Secret Manager.
type Resolver struct {
	projectID string
	access    accessFunc
}

func NewResolver(sm *secretmanager.Client, projectID string) *Resolver {
	if sm == nil {
		return &Resolver{projectID: strings.TrimSpace(projectID)}
	}
	return &Resolver{
		projectID: strings.TrimSpace(projectID),
		access: func(ctx context.Context, name string) ([]byte, error) {
			resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
			if err != nil {
				return nil, err
			}
			if resp == nil || resp.Payload == nil {
				return nil, fmt.Errorf("secrets: empty payload (%s)", name)
			}
			return resp.Payload.Data, nil
		},
	}
}

// Resolve returns the trimmed payload of secret.
// secret may be a bare id ("firebase-web-key"), a secret path
// ("projects/p/secrets/s") or a full version path.
func (r *Resolver) Resolve(ctx context.Context, secret string) (string, error) {
	if r == nil || r.access == nil {
		return "", ErrResolverNotConfigured
	}
	name, err := r.versionName(secret)
	if err != nil {
		return "", err
	}
	data, err := r.access(ctx, name)
	if err != nil {
		return "", fmt.Errorf("secrets: AccessSecretVersion failed (%s): %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *Resolver) versionName(secret string) (string, error) {
	s := strings.Trim(strings.TrimSpace(secret), "/")
	switch {
	case s == "":
		return "", errors.New("secrets: secret name is empty")
	case strings.Contains(s, "/versions/"):
		return s, nil
	case strings.HasPrefix(s, "projects/"):
		return s + "/versions/latest", nil
	}
	if r.projectID == "" {
		return "", errors.New("secrets: projectID is empty")
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", r.projectID, s), nil
}
