package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quehorrifico/mana-tomb-cli/internal/session"
)

func newLoginCommand(a **app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to mana-tomb",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			var err error
			if email == "" {
				if email, err = prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt("Password: "); err != nil {
					return err
				}
			}

			if err := app.sessions.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			app.saveSession()

			sess := app.sessions.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			// Local state is authoritative: even if the server call fails the
			// client is logged out.
			app.sessions.Logout(cmd.Context())
			if err := session.ClearCookies(app.cookiePath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			sess := app.sessions.Initialize(cmd.Context())
			switch sess.Status {
			case session.StatusAuthenticated:
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Identity.Email)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			}
			return nil
		},
	}
}

func newRegisterCommand(a **app) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new mana-tomb account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			var err error
			if username == "" {
				if username, err = prompt("Username: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt("Password: "); err != nil {
					return err
				}
			}

			id, err := app.sessions.Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			app.saveSession()

			fmt.Fprintf(cmd.OutOrStdout(), "Account created (id %d), you are now logged in\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
