package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/recaplabs/recap-cli/credentials"
)

func testAuthDeps(t *testing.T, token string) *AuthCommandDeps {
	t.Helper()
	keyring.MockInit()
	store := credentials.NewStore()
	t.Cleanup(func() { store.ClearToken() })
	return &AuthCommandDeps{
		Store:     store,
		ReadToken: func() (string, error) { return token, nil },
	}
}

func TestNewAuthCommand(t *testing.T) {
	cmd := NewAuthCommand(nil)
	require.NotNil(t, cmd)

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, want := range []string{"set-token", "show", "clear"} {
		assert.True(t, subs[want], "missing subcommand %q", want)
	}
}

func TestAuthSetAndShow(t *testing.T) {
	deps := testAuthDeps(t, "sk-live-abcdef123456")

	out, err := execute(t, NewAuthCommand(deps), "set-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Token stored.")

	out, err = execute(t, NewAuthCommand(deps), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-l...3456")
	assert.NotContains(t, out, "sk-live-abcdef123456", "full token never printed")
}

func TestAuthShow_NoToken(t *testing.T) {
	deps := testAuthDeps(t, "")

	out, err := execute(t, NewAuthCommand(deps), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No token configured.")
}

func TestAuthSetToken_Empty(t *testing.T) {
	deps := testAuthDeps(t, "   ")
	_, err := execute(t, NewAuthCommand(deps), "set-token")
	assert.Error(t, err)
}

func TestAuthClear(t *testing.T) {
	deps := testAuthDeps(t, "sk-something")

	_, err := execute(t, NewAuthCommand(deps), "set-token")
	require.NoError(t, err)

	out, err := execute(t, NewAuthCommand(deps), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Token cleared.")

	out, err = execute(t, NewAuthCommand(deps), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No token configured.")
}
