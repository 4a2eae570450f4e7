package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/api"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the issued tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := a.client.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if tok.AccessToken == "" {
				a.printf("login answered without a token; still signed out\n")
				return nil
			}
			a.printf("signed in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req api.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Auth.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("registered %s (id %d), now run `budgetbook login`\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().IntVar(&req.Age, "age", 0, "age")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("signed out\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			u, err := a.client.Users.Me(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%s <%s>  age %d  since %s\n", u.Name, u.Email, u.Age, u.CreatedAt.Format("2006-01-02"))
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var name string
	var age int
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the signed-in user's name or age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var req api.UserUpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("age") {
				req.Age = &age
			}
			if req.Name == nil && req.Age == nil {
				return errors.New("nothing to change, pass --name or --age")
			}
			u, err := a.client.Users.UpdateMe(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("%s <%s>  age %d\n", u.Name, u.Email, u.Age)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().IntVar(&age, "age", 0, "age")
	return cmd
}

func newCheckEmailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-email EMAIL",
		Short: "Check whether an email is still free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Auth.CheckEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "taken"
			if res.Available {
				state = "available"
			}
			a.printf("%s is %s", args[0], state)
			if res.Message != "" {
				a.printf(" (%s)", res.Message)
			}
			a.printf("\n")
			return nil
		},
	}
}
