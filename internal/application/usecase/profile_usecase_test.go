package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	identitydom "storefront/internal/domain/identity"
	profiledom "storefront/internal/domain/profile"
)

func errorsAs[T error](err error, target *T) bool { return errors.As(err, target) }

func newProfileFixture() (*fakeProfiles, *fakeAvatars, *fakeIdentity) {
	idp := &fakeIdentity{accounts: map[string]identitydom.Account{
		"idt": {UID: "u1", Email: "u1@shop.test", DisplayName: "Jane D"},
	}}
	return &fakeProfiles{docs: map[string]profiledom.Profile{}},
		&fakeAvatars{urls: map[string]string{}},
		idp
}

var validProfile = profiledom.Profile{
	Username:  "jane",
	FullName:  "Jane Doe",
	BirthDate: "1990-04-02",
	City:      "Lisbon",
	Street:    "Rua 1",
	PostCode:  "1000",
}

func TestProfileNotSignedIn(t *testing.T) {
	repo, av, idp := newProfileFixture()
	uc := NewProfileUsecase(repo, av, idp, tokenOnly{})

	_, err := uc.Load(context.Background())
	assert.IsError(t, err, ErrProfileNotSignedIn)
	_, err = uc.Save(context.Background(), validProfile, nil)
	assert.IsError(t, err, ErrProfileNotSignedIn)
}

func TestProfileLoadMissingDocument(t *testing.T) {
	repo, av, idp := newProfileFixture()
	uc := NewProfileUsecase(repo, av, idp, tokenOnly{"idt"})

	view, err := uc.Load(context.Background())
	assert.NoError(t, err)
	assert.False(t, view.Exists)
	assert.Equal(t, "u1", view.UID)
	assert.Equal(t, "Jane D", view.Profile.Username)
	assert.False(t, view.AvatarURL.Ok())
}

func TestProfileLoadAvatarFailureIsSoft(t *testing.T) {
	repo, av, idp := newProfileFixture()
	repo.docs["u1"] = validProfile
	av.failURL = true
	uc := NewProfileUsecase(repo, av, idp, tokenOnly{"idt"})

	view, err := uc.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, view.Exists)
	assert.Equal(t, validProfile, view.Profile)
	assert.False(t, view.AvatarURL.Ok())
}

func TestProfileSaveUploadsAvatarFirst(t *testing.T) {
	ctx := context.Background()
	var order []string
	repo, av, idp := newProfileFixture()
	repo.order = &order
	av.order = &order
	uc := NewProfileUsecase(repo, av, idp, tokenOnly{"idt"})

	view, err := uc.Save(ctx, validProfile, &profiledom.AvatarUpload{Body: strings.NewReader("jpeg"), ContentType: "image/jpeg"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"upload", "save"}, order)
	assert.Equal(t, []string{"Jane Doe"}, idp.displayNames)
	url, ok := view.AvatarURL.Get()
	assert.True(t, ok)
	assert.Equal(t, "https://storage.example/avatars/u1/avatar.jpg", url)

	loaded, err := uc.Load(ctx)
	assert.NoError(t, err)
	assert.True(t, loaded.Exists)
	assert.Equal(t, url, loaded.AvatarURL.Default(""))
}

func TestProfileSaveValidationAndUploadFailure(t *testing.T) {
	ctx := context.Background()
	repo, av, idp := newProfileFixture()
	uc := NewProfileUsecase(repo, av, idp, tokenOnly{"idt"})

	bad := validProfile
	bad.PostCode = "10-00"
	_, err := uc.Save(ctx, bad, nil)
	var verr *profiledom.ValidationError
	assert.True(t, errorsAs(err, &verr))

	av.failWrite = true
	_, err = uc.Save(ctx, validProfile, &profiledom.AvatarUpload{Body: strings.NewReader("x")})
	assert.IsError(t, err, errBoom)
	_, saved := repo.docs["u1"]
	assert.False(t, saved)
}
