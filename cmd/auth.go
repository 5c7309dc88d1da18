package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recaplabs/recap-cli/credentials"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

// AuthCommandDeps holds the dependencies for auth commands.
type AuthCommandDeps struct {
	Store *credentials.Store
	// ReadToken prompts for the token; injected so tests can bypass the
	// terminal.
	ReadToken func() (string, error)
}

// DefaultAuthDeps returns the default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		Store:     credentials.NewStore(),
		ReadToken: promptForToken,
	}
}

// NewAuthCommand creates the root auth command with all subcommands.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend API token",
		Long: `Manage the API token sent to the analysis backend.

The token is stored in the system keyring (macOS Keychain, Windows
Credential Manager, or Linux Secret Service). For CI and headless
environments, set RECAP_API_TOKEN instead.

Examples:
  # Store a token (prompted, not echoed)
  recap auth set-token

  # Show whether a token is configured
  recap auth show

  # Remove the stored token
  recap auth clear`,
	}

	cmd.AddCommand(newAuthSetTokenCommand(deps))
	cmd.AddCommand(newAuthShowCommand(deps))
	cmd.AddCommand(newAuthClearCommand(deps))

	return cmd
}

func newAuthSetTokenCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store the API token in the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := deps.ReadToken()
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			if err := deps.Store.SetToken(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	}
}

func newAuthShowCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured token (redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := deps.Store.Token()
			if rerrors.IsNoCredentials(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No token configured.")
				return nil
			}
			if err != nil {
				return err
			}

			source := "keyring"
			if os.Getenv(credentials.EnvToken) != "" {
				source = "environment (" + credentials.EnvToken + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token: %s (from %s)\n", credentials.Redact(token), source)
			return nil
		},
	}
}

func newAuthClearCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Store.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token cleared.")
			return nil
		},
	}
}

// promptForToken reads the token without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, CI).
func promptForToken() (string, error) {
	fmt.Fprint(os.Stderr, "API token: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
