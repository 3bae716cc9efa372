// internal/adapters/out/firestore/profile_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	profiledom "storefront/internal/domain/profile"
)

const DefaultProfilesCollection = "users"

// ProfileRepositoryFS implements profile.Repository using Firestore.
//
// Collection design:
// - collection: users (configurable)
// - docId: identity UID
// - fields: username, fullName, birthDate, city, street, postCode, updatedAt
//
// Save overwrites the whole document.
type ProfileRepositoryFS struct {
	Client     *firestore.Client
	Collection string
}

var _ profiledom.Repository = (*ProfileRepositoryFS)(nil)

func NewProfileRepositoryFS(client *firestore.Client, collection string) *ProfileRepositoryFS {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultProfilesCollection
	}
	return &ProfileRepositoryFS{Client: client, Collection: collection}
}

func (r *ProfileRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(r.Collection)
}

type profileDoc struct {
	Username  string    `firestore:"username"`
	FullName  string    `firestore:"fullName"`
	BirthDate string    `firestore:"birthDate"`
	City      string    `firestore:"city"`
	Street    string    `firestore:"street"`
	PostCode  string    `firestore:"postCode"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}

func toProfileDoc(p profiledom.Profile, now time.Time) profileDoc {
	return profileDoc{
		Username:  p.Username,
		FullName:  p.FullName,
		BirthDate: p.BirthDate,
		City:      p.City,
		Street:    p.Street,
		PostCode:  p.PostCode,
		UpdatedAt: now.UTC(),
	}
}

func (d profileDoc) toDomain() profiledom.Profile {
	return profiledom.Profile{
		Username:  d.Username,
		FullName:  d.FullName,
		BirthDate: d.BirthDate,
		City:      d.City,
		Street:    d.Street,
		PostCode:  d.PostCode,
	}.Normalize()
}

// GetByUID returns profile.ErrNotFound when the document does not exist.
func (r *ProfileRepositoryFS) GetByUID(ctx context.Context, uid string) (profiledom.Profile, error) {
	if r == nil || r.Client == nil {
		return profiledom.Profile{}, errors.New("profile_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return profiledom.Profile{}, profiledom.ErrInvalidID
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return profiledom.Profile{}, profiledom.ErrNotFound
		}
		return profiledom.Profile{}, err
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return profiledom.Profile{}, err
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepositoryFS) Save(ctx context.Context, uid string, p profiledom.Profile) error {
	if r == nil || r.Client == nil {
		return errors.New("profile_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return profiledom.ErrInvalidID
	}

	_, err := r.col().Doc(uid).Set(ctx, toProfileDoc(p.Normalize(), time.Now()))
	return err
}
