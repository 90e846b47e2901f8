package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	internalApp "github.com/haierkeys/ecrit-note-service/internal/app"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_ReplacesPlaceholder(t *testing.T) {
	prev := configDefault
	t.Cleanup(func() { configDefault = prev })
	configDefault = "security:\n  auth-token-key: \"" + defaultAuthTokenPlaceholder + "\"\n"

	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	cfg, _, err := internalApp.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Security.AuthTokenKey, 32)
	assert.NotEqual(t, defaultAuthTokenPlaceholder, cfg.Security.AuthTokenKey)
}

func TestTokenCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("security:\n  auth-token-key: cmd-key\n"), 0o600))

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"token", "-c", path, "-u", "user-42", "-e", "1h"})
	require.NoError(t, rootCmd.Execute())

	user, err := pkgapp.ParseTokenWithKey(strings.TrimSpace(out.String()), "cmd-key")
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.UID)
}

func TestVersionCommand(t *testing.T) {
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), internalApp.Version)
}

func TestVersionCommand_JSON(t *testing.T) {
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"version", "--json"})
	t.Cleanup(func() { versionJSON = false })
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"version": "`+internalApp.Version+`"`)
	assert.Contains(t, out.String(), `"gitTag"`)
}
