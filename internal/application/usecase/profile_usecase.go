// internal/application/usecase/profile_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/alecthomas/types/optional"
	"golang.org/x/sync/errgroup"

	identitydom "storefront/internal/domain/identity"
	profiledom "storefront/internal/domain/profile"
)

var ErrProfileNotSignedIn = errors.New("profile_usecase: not signed in")

// IdentityTokenSource exposes the current identity token.
type IdentityTokenSource interface {
	IdentityToken() (string, bool)
}

// ProfileView is what the profile screen shows.
type ProfileView struct {
	UID       string
	Email     string
	Profile   profiledom.Profile
	AvatarURL optional.Option[string]
	// Exists is false until the first Save.
	Exists bool
}

type ProfileUsecase struct {
	repo    profiledom.Repository
	avatars profiledom.AvatarStore
	idp     identitydom.Provider
	tokens  IdentityTokenSource
}

func NewProfileUsecase(
	repo profiledom.Repository,
	avatars profiledom.AvatarStore,
	idp identitydom.Provider,
	tokens IdentityTokenSource,
) *ProfileUsecase {
	return &ProfileUsecase{repo: repo, avatars: avatars, idp: idp, tokens: tokens}
}

// Load reads the profile document and the avatar URL concurrently.
// A user without a document gets a profile pre-filled with the identity display name.
func (uc *ProfileUsecase) Load(ctx context.Context) (ProfileView, error) {
	acct, _, err := uc.account(ctx)
	if err != nil {
		return ProfileView{}, err
	}

	view := ProfileView{UID: acct.UID, Email: acct.Email}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.repo.GetByUID(gctx, acct.UID)
		if errors.Is(err, profiledom.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("profile_usecase: load profile: %w", err)
		}
		view.Profile = p
		view.Exists = true
		return nil
	})
	g.Go(func() error {
		if uc.avatars == nil {
			return nil
		}
		url, ok, err := uc.avatars.URL(gctx, acct.UID)
		if err != nil {
			// a missing avatar is not worth failing the screen for
			log.Printf("[profile] WARN: avatar lookup failed uid=%s: %v", acct.UID, err)
			return nil
		}
		if ok {
			view.AvatarURL = optional.Some(url)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProfileView{}, err
	}

	if view.Profile.Username == "" {
		view.Profile.Username = acct.DisplayName
	}
	return view, nil
}

// Save validates p, uploads the avatar (when given) before writing the document,
// and finally sets the identity display name to the full name.
func (uc *ProfileUsecase) Save(ctx context.Context, p profiledom.Profile, avatar *profiledom.AvatarUpload) (ProfileView, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return ProfileView{}, err
	}

	acct, token, err := uc.account(ctx)
	if err != nil {
		return ProfileView{}, err
	}

	view := ProfileView{UID: acct.UID, Email: acct.Email, Profile: p, Exists: true}

	if avatar != nil {
		if uc.avatars == nil {
			return ProfileView{}, errors.New("profile_usecase: avatar storage not configured")
		}
		url, err := uc.avatars.Upload(ctx, acct.UID, *avatar)
		if err != nil {
			return ProfileView{}, fmt.Errorf("profile_usecase: upload avatar: %w", err)
		}
		view.AvatarURL = optional.Some(url)
	}

	if err := uc.repo.Save(ctx, acct.UID, p); err != nil {
		return ProfileView{}, fmt.Errorf("profile_usecase: save profile: %w", err)
	}

	if err := uc.idp.UpdateDisplayName(ctx, token, p.FullName); err != nil {
		return ProfileView{}, fmt.Errorf("profile_usecase: update display name: %w", err)
	}

	log.Printf("[profile] saved uid=%s avatar=%t", acct.UID, avatar != nil)
	return view, nil
}

func (uc *ProfileUsecase) account(ctx context.Context) (identitydom.Account, string, error) {
	if uc == nil || uc.tokens == nil || uc.idp == nil {
		return identitydom.Account{}, "", ErrProfileNotSignedIn
	}
	token, ok := uc.tokens.IdentityToken()
	if !ok {
		return identitydom.Account{}, "", ErrProfileNotSignedIn
	}
	acct, err := uc.idp.LookupAccount(ctx, token)
	if err != nil {
		return identitydom.Account{}, "", fmt.Errorf("profile_usecase: lookup account: %w", err)
	}
	return acct, token, nil
}
