// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	identitydom "storefront/internal/domain/identity"
	sessiondom "storefront/internal/domain/session"
)

var (
	// ErrSignInFailed wraps every sign-in failure after validation.
	ErrSignInFailed = errors.New("auth_usecase: sign in failed")
	// ErrGuestFailed wraps failures of EnterAsGuest.
	ErrGuestFailed = errors.New("auth_usecase: guest entry failed")
	// ErrIdentityNotConfigured means no identity provider was wired (no API key).
	ErrIdentityNotConfigured = errors.New("auth_usecase: identity provider not configured")
)

// AuthUsecase drives the sign-in, register and guest screens.
//
// The storefront API token comes from a fixed API account (creds), not from the
// user: the user authenticates against the identity provider only.
type AuthUsecase struct {
	api      sessiondom.APIAuthenticator
	idp      identitydom.Provider
	sessions *SessionUsecase
	creds    sessiondom.APICredentials
}

func NewAuthUsecase(
	api sessiondom.APIAuthenticator,
	idp identitydom.Provider,
	sessions *SessionUsecase,
	creds sessiondom.APICredentials,
) *AuthUsecase {
	return &AuthUsecase{api: api, idp: idp, sessions: sessions, creds: creds}
}

// SignIn validates the form, obtains an API token, signs in with the identity
// provider and opens an authenticated session.
// Validation failures return *identity.ValidationError; everything else wraps ErrSignInFailed.
func (uc *AuthUsecase) SignIn(ctx context.Context, form identitydom.SignInForm) (identitydom.Account, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return identitydom.Account{}, err
	}
	if uc.idp == nil {
		return identitydom.Account{}, ErrIdentityNotConfigured
	}

	apiToken, err := uc.api.Login(ctx, uc.creds)
	if err != nil {
		log.Printf("[auth] api login failed: %v", err)
		return identitydom.Account{}, fmt.Errorf("%w: api login: %w", ErrSignInFailed, err)
	}

	acct, err := uc.idp.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		log.Printf("[auth] identity sign-in failed code=%s", identitydom.CodeOf(err))
		return identitydom.Account{}, fmt.Errorf("%w: %w", ErrSignInFailed, err)
	}

	if err := uc.sessions.Login(ctx, apiToken, acct.IDToken); err != nil {
		return identitydom.Account{}, fmt.Errorf("%w: %w", ErrSignInFailed, err)
	}

	log.Printf("[auth] signed in uid=%s", acct.UID)
	return acct, nil
}

// Register validates the form and creates an identity account whose display name
// is the username. It does not open a session; the user signs in afterwards.
func (uc *AuthUsecase) Register(ctx context.Context, reg identitydom.Registration) (identitydom.Account, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if err := reg.Validate(); err != nil {
		return identitydom.Account{}, err
	}
	if uc.idp == nil {
		return identitydom.Account{}, ErrIdentityNotConfigured
	}

	acct, err := uc.idp.SignUp(ctx, reg.Email, reg.Password, reg.Username)
	if err != nil {
		log.Printf("[auth] sign-up failed code=%s", identitydom.CodeOf(err))
		return identitydom.Account{}, err
	}

	log.Printf("[auth] registered uid=%s", acct.UID)
	return acct, nil
}

// EnterAsGuest obtains an API token for catalog browsing and switches to guest mode.
func (uc *AuthUsecase) EnterAsGuest(ctx context.Context) error {
	apiToken, err := uc.api.Login(ctx, uc.creds)
	if err != nil {
		log.Printf("[auth] guest api login failed: %v", err)
		return fmt.Errorf("%w: api login: %w", ErrGuestFailed, err)
	}
	if _, err := uc.sessions.EstablishAnonymousSession(ctx, apiToken); err != nil {
		return fmt.Errorf("%w: %w", ErrGuestFailed, err)
	}
	if err := uc.sessions.ContinueAsGuest(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrGuestFailed, err)
	}
	return nil
}
