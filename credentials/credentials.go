// Package credentials stores the backend API token in the system keyring:
// macOS Keychain, Windows Credential Manager, or Linux Secret Service
// (libsecret).
//
// For CI and headless environments, RECAP_API_TOKEN overrides the keyring.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

const (
	// keyringService is the service name used in the system keyring.
	keyringService = "recap-cli"
	// keyringUser is the account name used in the system keyring.
	keyringUser = "api-token"

	// EnvToken overrides the keyring when set.
	EnvToken = "RECAP_API_TOKEN"
)

// Store reads and writes the API token.
type Store struct{}

// NewStore creates a credential store backed by the system keyring.
func NewStore() *Store { return &Store{} }

// Token returns the API token, preferring the RECAP_API_TOKEN environment
// variable over the keyring. Returns ErrNoCredentials when neither is set.
func (s *Store) Token() (string, error) {
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("no API token stored: %w", rerrors.ErrNoCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("reading token from keyring: %w", err)
	}
	return token, nil
}

// SetToken stores the API token in the keyring.
func (s *Store) SetToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is empty: %w", rerrors.ErrValidation)
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return fmt.Errorf("storing token in keyring: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an absent token is not an
// error.
func (s *Store) ClearToken() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keyring: %w", err)
	}
	return nil
}

// Redact shortens a token for display, keeping only the first and last four
// characters.
func Redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
