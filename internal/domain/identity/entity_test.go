package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRegisterMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Code: CodeEmailAlreadyInUse}, MsgEmailAlreadyInUse},
		{&Error{Code: CodeInvalidEmail}, MsgInvalidEmail},
		{fmt.Errorf("wrapped: %w", &Error{Code: CodeWeakPassword}), MsgWeakPassword},
		{&Error{Code: CodeUserDisabled}, MsgRegisterFailed},
		{errors.New("network down"), MsgRegisterFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RegisterMessage(tt.err))
	}
	assert.Equal(t, MsgSignInFailed, SignInMessage(&Error{Code: CodeInvalidCredential}))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Code: CodeUnknown, Err: cause}
	assert.IsError(t, err, cause)
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}

func TestRegistrationValidate(t *testing.T) {
	ok := Registration{Email: "a@b.co", Username: "ann", Password: "secret", ConfirmPassword: "secret"}
	assert.NoError(t, ok.Validate())

	bad := Registration{Email: "not-an-email", Username: "an", Password: "123", ConfirmPassword: "124"}
	err := bad.Validate()
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	fields := []string{}
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"email", "username", "password", "confirmPassword"}, fields)
}

func TestSignInFormValidate(t *testing.T) {
	assert.NoError(t, SignInForm{Email: "a@b.co", Password: "secret"}.Validate())
	assert.Error(t, SignInForm{Email: "", Password: ""}.Validate())
	assert.Error(t, SignInForm{Email: "a@b", Password: "secret"}.Validate())
}
