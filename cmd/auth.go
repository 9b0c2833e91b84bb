package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/spf13/cobra"
)

func newAuthCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, register and inspect the current session",
	}

	cmd.AddCommand(
		newAuthLoginCmd(state),
		newAuthRegisterCmd(state),
		newAuthLogoutCmd(state),
		newAuthWhoamiCmd(state),
		newAuthSessionCmd(state),
	)

	return cmd
}

func newAuthLoginCmd(state *cliState) *cobra.Command {
	var identifier string
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				secret, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = secret
			}

			return state.run(cmd, runOptions{showSession: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("identifier", identifier).
					Set("secret", password)
				return app.dispatch(ctx, application.ActionLogin, form)
			})
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "u", "", "Username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func newAuthRegisterCmd(state *cliState) *cobra.Command {
	var fullName string
	var email string
	var username string
	var password string
	var confirmation string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("full_name", fullName).
					Set("email", email).
					Set("username", username).
					Set("secret", password).
					Set("confirmation", confirmation)
				return app.dispatch(ctx, application.ActionRegister, form)
			})
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&username, "username", "", "Username (default: the email)")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&confirmation, "confirm-password", "", "Password confirmation")

	return cmd
}

func newAuthLogoutCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{showSession: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionLogout, application.NewForm())
			})
		},
	}
}

func newAuthWhoamiCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the persisted session and show the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{showSession: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionRestoreSession, application.NewForm())
			})
		},
	}
}

type sessionReport struct {
	State     string     `json:"state"`
	BaseURL   string     `json:"base_url"`
	Backend   string     `json:"session_backend"`
	User      string     `json:"user,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func newAuthSessionCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show session details, including token expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(_ context.Context, app *app) error {
				info := app.controller.SessionInfo()
				report := sessionReport{
					State:   string(info.State),
					BaseURL: app.cfg.BaseURL,
					Backend: app.cfg.SessionBackend,
					Expired: info.Expired(time.Now()),
				}
				if info.User != nil {
					report.User = info.User.DisplayName()
				}
				if info.Claims != nil {
					report.Subject = info.Claims.Subject
					if !info.Claims.ExpiresAt.IsZero() {
						expires := info.Claims.ExpiresAt.UTC()
						report.ExpiresAt = &expires
					}
				}

				return writeSessionReport(cmd.OutOrStdout(), report, state.flags.jsonOutput)
			})
		},
	}
}

func writeSessionReport(w io.Writer, report sessionReport, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	lines := []string{
		fmt.Sprintf("state: %s", report.State),
		fmt.Sprintf("server: %s", report.BaseURL),
		fmt.Sprintf("storage: %s", report.Backend),
	}
	if report.User != "" {
		lines = append(lines, fmt.Sprintf("user: %s", report.User))
	}
	if report.Subject != "" {
		lines = append(lines, fmt.Sprintf("token subject: %s", report.Subject))
	}
	if report.ExpiresAt != nil {
		expiry := report.ExpiresAt.Format(time.RFC3339)
		if report.Expired {
			expiry += " (expired)"
		}
		lines = append(lines, fmt.Sprintf("token expires: %s", expiry))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
