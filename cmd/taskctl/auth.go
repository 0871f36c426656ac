package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/msomdec/taskboard/internal/domain"
)

func newFlagSet(name string, a *app) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return true, usagef("%s: %v", fs.Name(), err)
	}
	return false, nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	var email, passwordFile string
	fs := newFlagSet("login", a)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if email == "" {
		return usagef("login: --email is required")
	}

	password, err := readPassword(a.stdin, passwordFile)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, email, password); err != nil {
		return a.sessionFailure(err)
	}

	user := a.session.State().User
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	var name, email, passwordFile string
	fs := newFlagSet("register", a)
	fs.StringVar(&name, "name", "", "display name")
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if name == "" || email == "" {
		return usagef("register: --name and --email are required")
	}

	password, err := readPassword(a.stdin, passwordFile)
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, name, email, password); err != nil {
		return a.sessionFailure(err)
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s <%s>\n", name, email)
	return nil
}

func cmdLogout(_ context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return usagef("logout takes no arguments")
	}
	a.session.Logout()
	a.tasks.Reset()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	a.session.RefreshProfile(ctx)
	if !a.session.IsAuthenticated() {
		return errSessionRejected
	}

	st := a.session.State()
	if st.Error != "" {
		fmt.Fprintf(a.out, "warning: %s, showing cached profile\n", st.Error)
	}
	renderUser(a.out, *st.User)
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	var name, email, avatar string
	fs := newFlagSet("profile", a)
	fs.StringVar(&name, "name", "", "new display name")
	fs.StringVar(&email, "email", "", "new email")
	fs.StringVar(&avatar, "avatar", "", "new avatar URL")
	if done, err := parseFlags(fs, args); done {
		return err
	}

	var update domain.ProfileUpdate
	if fs.Changed("name") {
		update.Name = &name
	}
	if fs.Changed("email") {
		update.Email = &email
	}
	if fs.Changed("avatar") {
		update.Avatar = &avatar
	}
	if update == (domain.ProfileUpdate{}) {
		return cmdWhoami(ctx, a, nil)
	}

	user, err := a.session.UpdateProfile(ctx, update)
	if err != nil {
		if !a.session.IsAuthenticated() {
			return errSessionRejected
		}
		return a.sessionFailure(err)
	}
	renderUser(a.out, user)
	return nil
}
