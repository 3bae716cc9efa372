// internal/domain/identity/entity.go
package identity

import (
	"errors"
	"regexp"
	"strings"
)

// Error codes surfaced by the identity provider, in the provider's own naming.
const (
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeUserDisabled      = "auth/user-disabled"
	CodeUnknown           = "auth/unknown"
)

// Fixed user-facing messages.
const (
	MsgEmailAlreadyInUse = "This email is already registered."
	MsgInvalidEmail      = "Invalid email address."
	MsgWeakPassword      = "Password must be at least 6 characters."
	MsgRegisterFailed    = "Registration failed. Please try again."
	MsgSignInFailed      = "Invalid email or password. Please try again."
)

var registerMessages = map[string]string{
	CodeEmailAlreadyInUse: MsgEmailAlreadyInUse,
	CodeInvalidEmail:      MsgInvalidEmail,
	CodeWeakPassword:      MsgWeakPassword,
}

// Error is an identity-provider failure with a stable code.
type Error struct {
	Code string
	// Detail is the provider's raw message (for logs, not for users).
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return "identity: " + e.Code + ": " + e.Detail
	}
	return "identity: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the provider code, or CodeUnknown.
func CodeOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) && ie.Code != "" {
		return ie.Code
	}
	return CodeUnknown
}

// RegisterMessage maps a sign-up failure to its fixed message.
func RegisterMessage(err error) string {
	if msg, ok := registerMessages[CodeOf(err)]; ok {
		return msg
	}
	return MsgRegisterFailed
}

// SignInMessage is the same for every sign-in failure; the screen never reveals which part was wrong.
func SignInMessage(error) string {
	return MsgSignInFailed
}

// Account is the identity provider's view of a signed-in user.
type Account struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
}

// ----------------------------
// Form validation
// ----------------------------

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	MinPasswordLen = 6
	MinUsernameLen = 3
)

// FieldError is a single form validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field errors in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "identity: invalid form (" + strings.Join(parts, "; ") + ")"
}

// Registration is the sign-up form.
type Registration struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

func (r Registration) Validate() error {
	var fe []FieldError
	fe = appendEmailErrors(fe, r.Email)

	u := strings.TrimSpace(r.Username)
	switch {
	case u == "":
		fe = append(fe, FieldError{"username", "username is required"})
	case len([]rune(u)) < MinUsernameLen:
		fe = append(fe, FieldError{"username", "at least 3 characters"})
	}

	fe = appendPasswordErrors(fe, r.Password)
	if r.ConfirmPassword != r.Password {
		fe = append(fe, FieldError{"confirmPassword", "passwords do not match"})
	}
	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

// SignInForm is the login form.
type SignInForm struct {
	Email    string
	Password string
}

func (f SignInForm) Validate() error {
	var fe []FieldError
	fe = appendEmailErrors(fe, f.Email)
	fe = appendPasswordErrors(fe, f.Password)
	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

func appendEmailErrors(fe []FieldError, email string) []FieldError {
	e := strings.TrimSpace(email)
	switch {
	case e == "":
		return append(fe, FieldError{"email", "email is required"})
	case !emailPattern.MatchString(e):
		return append(fe, FieldError{"email", "invalid email address"})
	}
	return fe
}

func appendPasswordErrors(fe []FieldError, pw string) []FieldError {
	switch {
	case pw == "":
		return append(fe, FieldError{"password", "password is required"})
	case len([]rune(pw)) < MinPasswordLen:
		return append(fe, FieldError{"password", "at least 6 characters"})
	}
	return fe
}
