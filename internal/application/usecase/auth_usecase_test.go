package usecase

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	identitydom "storefront/internal/domain/identity"
	sessiondom "storefront/internal/domain/session"
)

var apiCreds = sessiondom.APICredentials{Email: "api@shop.test", Username: "api"}

func newAuth(api *fakeAPIAuth, idp *fakeIdentity) (*AuthUsecase, *SessionUsecase, *fakeStore) {
	store := newFakeStore()
	sessions := newSession(store)
	sessions.Initialize(context.Background())
	return NewAuthUsecase(api, idp, sessions, apiCreds), sessions, store
}

func TestAuthSignIn(t *testing.T) {
	api := &fakeAPIAuth{token: "api-token"}
	uc, sessions, store := newAuth(api, &fakeIdentity{})

	acct, err := uc.SignIn(context.Background(), identitydom.SignInForm{Email: " user@shop.test ", Password: "secret1"})
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", acct.UID)
	assert.Equal(t, []sessiondom.APICredentials{apiCreds}, api.got)

	st := sessions.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "api-token", store.data[sessiondom.KeyAPIToken])
	assert.Equal(t, "id-token-1", store.data[sessiondom.KeyIdentityToken])
}

func TestAuthSignInValidation(t *testing.T) {
	api := &fakeAPIAuth{token: "api-token"}
	uc, _, _ := newAuth(api, &fakeIdentity{})

	_, err := uc.SignIn(context.Background(), identitydom.SignInForm{Email: "nope", Password: "1"})
	var verr *identitydom.ValidationError
	assert.True(t, errorsAs(err, &verr))
	assert.Equal(t, 0, len(api.got))
}

func TestAuthSignInFailures(t *testing.T) {
	ctx := context.Background()
	form := identitydom.SignInForm{Email: "user@shop.test", Password: "secret1"}

	t.Run("APILogin", func(t *testing.T) {
		uc, sessions, _ := newAuth(&fakeAPIAuth{err: errBoom}, &fakeIdentity{})
		_, err := uc.SignIn(ctx, form)
		assert.IsError(t, err, ErrSignInFailed)
		assert.Equal(t, sessiondom.StatusAnonymous, sessions.State().Status())
	})

	t.Run("Identity", func(t *testing.T) {
		idErr := &identitydom.Error{Code: identitydom.CodeInvalidCredential}
		uc, sessions, _ := newAuth(&fakeAPIAuth{token: "t"}, &fakeIdentity{signInErr: idErr})
		_, err := uc.SignIn(ctx, form)
		assert.IsError(t, err, ErrSignInFailed)
		assert.Equal(t, identitydom.CodeInvalidCredential, identitydom.CodeOf(err))
		assert.Equal(t, identitydom.MsgSignInFailed, identitydom.SignInMessage(err))
		assert.Equal(t, sessiondom.StatusAnonymous, sessions.State().Status())
	})
}

func TestAuthRegister(t *testing.T) {
	ctx := context.Background()
	idp := &fakeIdentity{}
	uc, sessions, _ := newAuth(&fakeAPIAuth{token: "t"}, idp)

	acct, err := uc.Register(ctx, identitydom.Registration{
		Email: "new@shop.test", Username: " newbie ", Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.NoError(t, err)
	assert.Equal(t, "newbie", acct.DisplayName)
	assert.Equal(t, "newbie", idp.signUpName)
	// registration does not sign in
	assert.Equal(t, sessiondom.StatusAnonymous, sessions.State().Status())
}

func TestAuthRegisterErrors(t *testing.T) {
	ctx := context.Background()

	uc, _, _ := newAuth(&fakeAPIAuth{}, &fakeIdentity{})
	_, err := uc.Register(ctx, identitydom.Registration{Email: "a@b.c", Username: "abc", Password: "secret1", ConfirmPassword: "other"})
	var verr *identitydom.ValidationError
	assert.True(t, errorsAs(err, &verr))

	exists := &identitydom.Error{Code: identitydom.CodeEmailAlreadyInUse}
	uc, _, _ = newAuth(&fakeAPIAuth{}, &fakeIdentity{signUpErr: exists})
	_, err = uc.Register(ctx, identitydom.Registration{Email: "a@b.c", Username: "abc", Password: "secret1", ConfirmPassword: "secret1"})
	assert.Equal(t, identitydom.MsgEmailAlreadyInUse, identitydom.RegisterMessage(err))
}

func TestAuthEnterAsGuest(t *testing.T) {
	ctx := context.Background()
	uc, sessions, store := newAuth(&fakeAPIAuth{token: "guest-api"}, &fakeIdentity{})

	assert.NoError(t, uc.EnterAsGuest(ctx))
	assert.Equal(t, sessiondom.StatusGuest, sessions.State().Status())
	assert.Equal(t, "guest-api", store.data[sessiondom.KeyAPIToken])
	assert.False(t, store.has(sessiondom.KeySessionID))

	uc, sessions, _ = newAuth(&fakeAPIAuth{err: errBoom}, &fakeIdentity{})
	assert.IsError(t, uc.EnterAsGuest(ctx), ErrGuestFailed)
	assert.Equal(t, sessiondom.StatusAnonymous, sessions.State().Status())
}

func TestAuthWithoutIdentityProvider(t *testing.T) {
	store := newFakeStore()
	sessions := newSession(store)
	uc := NewAuthUsecase(&fakeAPIAuth{token: "t"}, nil, sessions, apiCreds)

	_, err := uc.SignIn(context.Background(), identitydom.SignInForm{Email: "a@b.c", Password: "secret1"})
	assert.IsError(t, err, ErrIdentityNotConfigured)

	// guest entry needs no identity provider
	assert.NoError(t, uc.EnterAsGuest(context.Background()))
}
