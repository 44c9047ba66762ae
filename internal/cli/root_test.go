package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/config"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// sharedOpener hands every command the same in-memory container so state
// survives across invocations.
func sharedOpener(t *testing.T, seeds []config.SeedUser) Opener {
	t.Helper()
	cfg := &config.Config{
		Auth:      config.AuthConfig{JWTSecret: "cli-secret", BcryptCost: 4},
		Bootstrap: config.BootstrapConfig{Users: seeds},
	}
	container, err := app.Build(context.Background(), cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	return func(context.Context, app.Options) (*app.Container, *config.Config, *zap.Logger, error) {
		return container, cfg, zap.NewNop(), nil
	}
}

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	out, err := executeCommand(NewRootCmd(sharedOpener(t, nil)), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations")
}

func TestUserCommands(t *testing.T) {
	open := sharedOpener(t, nil)

	out, err := executeCommand(NewRootCmd(open), "user", "create", "--username", "admin", "--password", "pw", "--role", "IT_SUPPORT")
	require.NoError(t, err)
	assert.Contains(t, out, "created user 1 (admin, IT_SUPPORT)")

	_, err = executeCommand(NewRootCmd(open), "user", "create", "--username", "admin", "--password", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	out, err = executeCommand(NewRootCmd(open), "--json", "user", "list")
	require.NoError(t, err)
	var users []userView
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)

	out, err = executeCommand(NewRootCmd(open), "user", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted user 1")

	_, err = executeCommand(NewRootCmd(open), "user", "delete", "1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = executeCommand(NewRootCmd(open), "user", "delete", "abc")
	require.Error(t, err)
}

func TestSeedCommand_Idempotent(t *testing.T) {
	open := sharedOpener(t, []config.SeedUser{
		{Username: "admin", Password: "admin", Role: "IT_SUPPORT"},
		{Username: "user", Password: "user", Role: "EMPLOYEE"},
	})

	out, err := executeCommand(NewRootCmd(open), "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 2 of 2")

	out, err = executeCommand(NewRootCmd(open), "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 0 of 2")
}

func TestMigrateCommand_RequiresPostgres(t *testing.T) {
	_, err := executeCommand(NewRootCmd(sharedOpener(t, nil)), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
