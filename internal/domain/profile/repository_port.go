// internal/domain/profile/repository_port.go
package profile

import (
	"context"
	"io"
)

// Repository is a persistence port for Profile.
//
// Storage (Firestore):
//   - collection: users
//   - docId: identity UID
type Repository interface {
	// GetByUID returns ErrNotFound when no document exists.
	GetByUID(ctx context.Context, uid string) (Profile, error)
	Save(ctx context.Context, uid string, p Profile) error
}

// AvatarUpload is a new avatar image.
type AvatarUpload struct {
	Body        io.Reader
	ContentType string
}

// AvatarStore keeps one avatar image per UID.
type AvatarStore interface {
	// Upload stores the image and returns its download URL.
	Upload(ctx context.Context, uid string, a AvatarUpload) (string, error)
	// URL returns ("", false, nil) when no avatar was uploaded.
	URL(ctx context.Context, uid string) (string, bool, error)
}
