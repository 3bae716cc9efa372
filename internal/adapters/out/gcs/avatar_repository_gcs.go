// internal/adapters/out/gcs/avatar_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	profiledom "storefront/internal/domain/profile"
)

const (
	defaultPublicBaseURL = "https://storage.googleapis.com"
	avatarObjectName     = "avatar.jpg"
	defaultContentType   = "image/jpeg"
)

// AvatarRepositoryGCS implements profile.AvatarStore backed by Google Cloud Storage.
//
// Object layout: avatars/{uid}/avatar.jpg (one avatar per user, overwritten on upload).
type AvatarRepositoryGCS struct {
	Client *storage.Client
	Bucket string

	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

var _ profiledom.AvatarStore = (*AvatarRepositoryGCS)(nil)

func NewAvatarRepositoryGCS(client *storage.Client, bucket string) *AvatarRepositoryGCS {
	return &AvatarRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: defaultPublicBaseURL,
	}
}

func (r *AvatarRepositoryGCS) check() error {
	if r == nil || r.Client == nil {
		return errors.New("AvatarRepositoryGCS: nil storage client")
	}
	if strings.TrimSpace(r.Bucket) == "" {
		return errors.New("AvatarRepositoryGCS: bucket is empty")
	}
	return nil
}

// Upload overwrites the user's avatar and returns its public URL.
func (r *AvatarRepositoryGCS) Upload(ctx context.Context, uid string, a profiledom.AvatarUpload) (string, error) {
	if err := r.check(); err != nil {
		return "", err
	}
	obj, err := avatarObjectPath(uid)
	if err != nil {
		return "", err
	}
	if a.Body == nil {
		return "", errors.New("AvatarRepositoryGCS: empty body")
	}

	ct := strings.TrimSpace(a.ContentType)
	if ct == "" {
		ct = defaultContentType
	}

	w := r.Client.Bucket(r.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = ct
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, a.Body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("AvatarRepositoryGCS: write %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("AvatarRepositoryGCS: close %s: %w", obj, err)
	}
	return r.PublicURL(obj), nil
}

// URL returns ("", false, nil) when the user never uploaded an avatar.
func (r *AvatarRepositoryGCS) URL(ctx context.Context, uid string) (string, bool, error) {
	if err := r.check(); err != nil {
		return "", false, err
	}
	obj, err := avatarObjectPath(uid)
	if err != nil {
		return "", false, err
	}

	if _, err := r.Client.Bucket(r.Bucket).Object(obj).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return r.PublicURL(obj), true, nil
}

// PublicURL returns a public URL for the object.
func (r *AvatarRepositoryGCS) PublicURL(objectPath string) string {
	base := strings.TrimRight(strings.TrimSpace(r.PublicBaseURL), "/")
	if base == "" {
		base = defaultPublicBaseURL
	}
	return base + "/" + r.Bucket + "/" + strings.TrimLeft(objectPath, "/")
}

func avatarObjectPath(uid string) (string, error) {
	seg := sanitizePathSegment(uid)
	if seg == "" {
		return "", profiledom.ErrInvalidID
	}
	return "avatars/" + seg + "/" + avatarObjectName, nil
}

// sanitizePathSegment removes separators and trims dots/spaces.
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, ". ")
}
