// internal/adapters/out/identity/firebase_provider.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	identitydom "storefront/internal/domain/identity"
)

var ErrAPIKeyMissing = errors.New("identity: firebase web API key is empty")

// Options configures FirebaseProvider.
type Options struct {
	// APIKey is the Firebase web API key (required).
	APIKey string
	// Endpoint overrides the Identity Toolkit base URL (emulator, tests).
	// It must end with "/".
	Endpoint string
	// Admin is optional. When set, ID tokens are verified and display names
	// updated through the Admin SDK instead of the REST API.
	Admin *firebaseauth.Client
}

// FirebaseProvider implements identity.Provider on the Identity Toolkit REST API
// (email/password accounts).
type FirebaseProvider struct {
	rp    *identitytoolkit.RelyingpartyService
	admin *firebaseauth.Client
}

var _ identitydom.Provider = (*FirebaseProvider)(nil)

func NewFirebaseProvider(ctx context.Context, opts Options) (*FirebaseProvider, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(key)}
	if ep := strings.TrimSpace(opts.Endpoint); ep != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(ep))
	}

	svc, err := identitytoolkit.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("identity: identitytoolkit.NewService failed: %w", err)
	}

	if opts.Admin == nil {
		log.Printf("[identity] admin client not configured; using REST for token lookup")
	}
	return &FirebaseProvider{rp: svc.Relyingparty, admin: opts.Admin}, nil
}

// SignUp creates an email/password account with the given display name.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (identitydom.Account, error) {
	if p == nil || p.rp == nil {
		return identitydom.Account{}, errors.New("identity: provider is nil")
	}

	resp, err := p.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}).Context(ctx).Do()
	if err != nil {
		return identitydom.Account{}, mapError(err)
	}

	return identitydom.Account{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  firstNonEmpty(resp.DisplayName, strings.TrimSpace(displayName)),
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (identitydom.Account, error) {
	if p == nil || p.rp == nil {
		return identitydom.Account{}, errors.New("identity: provider is nil")
	}

	resp, err := p.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return identitydom.Account{}, mapError(err)
	}

	return identitydom.Account{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// LookupAccount resolves the account behind an ID token.
// With an admin client the token signature is verified locally first.
func (p *FirebaseProvider) LookupAccount(ctx context.Context, idToken string) (identitydom.Account, error) {
	if p == nil || p.rp == nil {
		return identitydom.Account{}, errors.New("identity: provider is nil")
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return identitydom.Account{}, &identitydom.Error{Code: identitydom.CodeInvalidCredential, Detail: "empty id token"}
	}

	if p.admin != nil {
		acct, err := p.lookupAdmin(ctx, idToken)
		if err == nil {
			return acct, nil
		}
		log.Printf("[identity] WARN: admin lookup failed, falling back to REST: %v", err)
	}

	resp, err := p.rp.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: idToken,
	}).Context(ctx).Do()
	if err != nil {
		return identitydom.Account{}, mapError(err)
	}
	if len(resp.Users) == 0 || resp.Users[0] == nil {
		return identitydom.Account{}, &identitydom.Error{Code: identitydom.CodeInvalidCredential, Detail: "USER_NOT_FOUND"}
	}

	u := resp.Users[0]
	return identitydom.Account{
		UID:         u.LocalId,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IDToken:     idToken,
	}, nil
}

func (p *FirebaseProvider) lookupAdmin(ctx context.Context, idToken string) (identitydom.Account, error) {
	tok, err := p.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return identitydom.Account{}, err
	}
	rec, err := p.admin.GetUser(ctx, tok.UID)
	if err != nil {
		return identitydom.Account{}, err
	}

	acct := identitydom.Account{UID: tok.UID, IDToken: idToken}
	if rec != nil && rec.UserInfo != nil {
		acct.Email = rec.Email
		acct.DisplayName = rec.DisplayName
	}
	return acct, nil
}

func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, idToken, displayName string) error {
	if p == nil || p.rp == nil {
		return errors.New("identity: provider is nil")
	}
	displayName = strings.TrimSpace(displayName)

	if p.admin != nil {
		tok, err := p.admin.VerifyIDToken(ctx, idToken)
		if err == nil {
			_, err = p.admin.UpdateUser(ctx, tok.UID, (&firebaseauth.UserToUpdate{}).DisplayName(displayName))
			if err == nil {
				return nil
			}
		}
		log.Printf("[identity] WARN: admin display name update failed, falling back to REST: %v", err)
	}

	_, err := p.rp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:     strings.TrimSpace(idToken),
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ------------------------------------------------------------
// error mapping
// ------------------------------------------------------------

// providerCodes maps Identity Toolkit error messages to stable codes.
var providerCodes = map[string]string{
	"EMAIL_EXISTS":              identitydom.CodeEmailAlreadyInUse,
	"INVALID_EMAIL":             identitydom.CodeInvalidEmail,
	"MISSING_EMAIL":             identitydom.CodeInvalidEmail,
	"WEAK_PASSWORD":             identitydom.CodeWeakPassword,
	"MISSING_PASSWORD":          identitydom.CodeWeakPassword,
	"EMAIL_NOT_FOUND":           identitydom.CodeInvalidCredential,
	"INVALID_PASSWORD":          identitydom.CodeInvalidCredential,
	"INVALID_LOGIN_CREDENTIALS": identitydom.CodeInvalidCredential,
	"INVALID_ID_TOKEN":          identitydom.CodeInvalidCredential,
	"TOKEN_EXPIRED":             identitydom.CodeInvalidCredential,
	"USER_NOT_FOUND":            identitydom.CodeInvalidCredential,
	"USER_DISABLED":             identitydom.CodeUserDisabled,
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &identitydom.Error{Code: identitydom.CodeUnknown, Detail: err.Error(), Err: err}
	}

	// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
	msg := strings.TrimSpace(gerr.Message)
	head := msg
	if i := strings.IndexAny(head, " :"); i >= 0 {
		head = head[:i]
	}

	code, ok := providerCodes[head]
	if !ok {
		code = identitydom.CodeUnknown
	}
	return &identitydom.Error{Code: code, Detail: msg, Err: err}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
