// cmd/storefront/cmd_session.go
package main

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/application/usecase"
	identitydom "storefront/internal/domain/identity"
	"storefront/internal/platform/di"
)

type loginCmd struct {
	Email    string `short:"e" required:"" help:"Account email."`
	Password string `short:"p" required:"" env:"STOREFRONT_PASSWORD" help:"Account password."`
}

func (c *loginCmd) Run(ctx context.Context, cont *di.Container) error {
	acct, err := cont.Auth.SignIn(ctx, identitydom.SignInForm{Email: c.Email, Password: c.Password})
	if err != nil {
		return formError(err, identitydom.SignInMessage)
	}
	fmt.Fprintf(stdout, "signed in as %s\n", acct.Email)
	return nil
}

type registerCmd struct {
	Email    string `short:"e" required:"" help:"Account email."`
	Username string `short:"u" required:"" help:"Display name."`
	Password string `short:"p" required:"" env:"STOREFRONT_PASSWORD" help:"Password."`
	Confirm  string `help:"Password confirmation (defaults to --password)."`
}

func (c *registerCmd) Run(ctx context.Context, cont *di.Container) error {
	confirm := c.Confirm
	if confirm == "" {
		confirm = c.Password
	}
	acct, err := cont.Auth.Register(ctx, identitydom.Registration{
		Email:           c.Email,
		Username:        c.Username,
		Password:        c.Password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return formError(err, identitydom.RegisterMessage)
	}
	fmt.Fprintf(stdout, "registered %s (%s)\n", acct.Email, acct.DisplayName)
	return nil
}

type guestCmd struct{}

func (c *guestCmd) Run(ctx context.Context, cont *di.Container) error {
	if err := cont.Auth.EnterAsGuest(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "browsing as guest")
	return nil
}

type logoutCmd struct{}

func (c *logoutCmd) Run(ctx context.Context, cont *di.Container) error {
	err := cont.Session.Logout(ctx)
	fmt.Fprintln(stdout, "signed out")
	return err
}

type statusCmd struct{}

func (c *statusCmd) Run(cont *di.Container) error {
	st := cont.Session.State()
	fmt.Fprintf(stdout, "status:     %s\n", st.Status())
	fmt.Fprintf(stdout, "session id: %s\n", st.SessionID.Default("-"))
	fmt.Fprintf(stdout, "api:        %s\n", cont.Config.APIBaseURL)
	fmt.Fprintf(stdout, "identity:   %t\n", cont.Identity != nil)
	fmt.Fprintf(stdout, "profiles:   %t\n", cont.Profile != nil)
	return nil
}

// formError turns validation failures into one line per field and everything
// else into the fixed user-facing message.
func formError(err error, message func(error) string) error {
	var ve *identitydom.ValidationError
	if errors.As(err, &ve) {
		for _, f := range ve.Fields {
			fmt.Fprintf(stdout, "  %s: %s\n", f.Field, f.Message)
		}
		return errors.New("invalid form")
	}
	if errors.Is(err, usecase.ErrIdentityNotConfigured) {
		return err
	}
	return errors.New(message(err))
}
