package main

import (
	"context"
	"flag"
	"fmt"
)

func (a *app) cmdRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("register: -email and -password are required")
	}

	token, err := a.client.Register(context.Background(), *email, *password)
	if err != nil {
		return err
	}
	a.client.SetToken(token)
	if err := a.st.SaveToken(a.cfg.Server.URL, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Println("Registered and logged in as", *email)
	return nil
}

func (a *app) cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password are required")
	}

	token, err := a.client.Login(context.Background(), *email, *password)
	if err != nil {
		return err
	}
	a.client.SetToken(token)
	if err := a.st.SaveToken(a.cfg.Server.URL, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Println("Logged in as", *email)
	return nil
}

func (a *app) cmdLogout() error {
	a.client.SetToken("")
	if err := a.st.ClearToken(a.cfg.Server.URL); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) cmdForgotPassword(args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("forgot-password: -email is required")
	}

	resetURL, err := a.client.ForgotPassword(context.Background(), *email)
	if err != nil {
		return err
	}
	if resetURL != "" {
		// The service returns the link directly instead of mailing it.
		fmt.Println("Reset link:", resetURL)
	} else {
		fmt.Println("Reset requested; check your email")
	}
	return nil
}

func (a *app) cmdResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	token := fs.String("token", "", "reset token from the reset link")
	password := fs.String("password", "", "new password")
	fs.Parse(args)

	if *token == "" || *password == "" {
		return fmt.Errorf("reset-password: -token and -password are required")
	}

	if err := a.client.ResetPassword(context.Background(), *token, *password); err != nil {
		return err
	}
	fmt.Println("Password reset; log in with the new password")
	return nil
}

func (a *app) cmdChangePassword(args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	fs.Parse(args)

	if *oldPassword == "" || *newPassword == "" {
		return fmt.Errorf("change-password: -old and -new are required")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if err := a.client.ChangePassword(context.Background(), *oldPassword, *newPassword); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}
