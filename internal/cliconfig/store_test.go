package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadOrEmpty()
	require.NoError(t, err)
	assert.Empty(t, cfg.Credentials)

	require.NoError(t, cfg.SetCredential("https://gateway.example.com:8443", "session"))
	require.NoError(t, Save(cfg))

	info, err := os.Stat(filepath.Join(home, ".pbichat", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)

	cred, err := loaded.GetCredential("http://gateway.example.com:8443/ignored")
	require.NoError(t, err)
	assert.Equal(t, "session", cred.Token)

	_, err = loaded.GetCredential("https://other.example.com")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	removed, err := loaded.RemoveCredential("https://gateway.example.com:8443")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestStore_InvalidServer(t *testing.T) {
	cfg := &CLIConfig{}
	assert.Error(t, cfg.SetCredential("localhost", "x"))
}
