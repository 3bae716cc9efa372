// cmd/storefront/cmd_profile.go
package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"storefront/internal/application/usecase"
	profiledom "storefront/internal/domain/profile"
	"storefront/internal/platform/di"
)

var errProfilesDisabled = errors.New("profiles are not configured (set FIRESTORE_PROJECT_ID and FIREBASE_API_KEY)")

type profileCmd struct {
	Show   profileShowCmd   `cmd:"" default:"1" help:"Show the profile."`
	Edit   profileEditCmd   `cmd:"" help:"Edit profile fields."`
	Avatar profileAvatarCmd `cmd:"" help:"Upload a new avatar image."`
}

type profileShowCmd struct{}

func (c *profileShowCmd) Run(ctx context.Context, cont *di.Container) error {
	if cont.Profile == nil {
		return errProfilesDisabled
	}
	view, err := cont.Profile.Load(ctx)
	if err != nil {
		return err
	}
	printProfile(view)
	return nil
}

// profileEditCmd overlays the given flags on the stored profile.
type profileEditCmd struct {
	Username  string `help:"Username."`
	FullName  string `name:"full-name" help:"Full name (also becomes the display name)."`
	BirthDate string `name:"birth-date" help:"Birth date, YYYY-MM-DD."`
	City      string `help:"City."`
	Street    string `help:"Street."`
	PostCode  string `name:"post-code" help:"Post code (digits)."`
}

func (c *profileEditCmd) Run(ctx context.Context, cont *di.Container) error {
	if cont.Profile == nil {
		return errProfilesDisabled
	}
	view, err := cont.Profile.Load(ctx)
	if err != nil {
		return err
	}
	return saveProfile(ctx, cont, c.apply(view.Profile), nil)
}

func (c *profileEditCmd) apply(p profiledom.Profile) profiledom.Profile {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Username, c.Username)
	set(&p.FullName, c.FullName)
	set(&p.BirthDate, c.BirthDate)
	set(&p.City, c.City)
	set(&p.Street, c.Street)
	set(&p.PostCode, c.PostCode)
	return p
}

type profileAvatarCmd struct {
	File string `arg:"" type:"existingfile" help:"Image file."`
}

func (c *profileAvatarCmd) Run(ctx context.Context, cont *di.Container) error {
	if cont.Profile == nil {
		return errProfilesDisabled
	}
	view, err := cont.Profile.Load(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	ct := mime.TypeByExtension(filepath.Ext(c.File))
	if ct == "" {
		ct = "image/jpeg"
	}
	return saveProfile(ctx, cont, view.Profile, &profiledom.AvatarUpload{Body: f, ContentType: ct})
}

func saveProfile(ctx context.Context, cont *di.Container, p profiledom.Profile, avatar *profiledom.AvatarUpload) error {
	view, err := cont.Profile.Save(ctx, p, avatar)
	if err != nil {
		var ve *profiledom.ValidationError
		if errors.As(err, &ve) {
			for _, f := range ve.Fields {
				fmt.Fprintf(stdout, "  %s: %s\n", f.Field, f.Message)
			}
			return errors.New("invalid profile")
		}
		return err
	}
	fmt.Fprintln(stdout, "profile saved")
	printProfile(view)
	return nil
}

func printProfile(v usecase.ProfileView) {
	fmt.Fprintf(stdout, "email:      %s\n", v.Email)
	fmt.Fprintf(stdout, "username:   %s\n", v.Profile.Username)
	fmt.Fprintf(stdout, "full name:  %s\n", v.Profile.FullName)
	fmt.Fprintf(stdout, "birth date: %s\n", v.Profile.BirthDate)
	fmt.Fprintf(stdout, "address:    %s, %s %s\n", v.Profile.Street, v.Profile.PostCode, v.Profile.City)
	fmt.Fprintf(stdout, "avatar:     %s\n", v.AvatarURL.Default("-"))
	if !v.Exists {
		fmt.Fprintln(stdout, "(not saved yet)")
	}
}
