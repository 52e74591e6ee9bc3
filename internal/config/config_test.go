package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8765", cfg.Network.BindAddress)
	assert.Equal(t, 50*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 0, cfg.Match.RatingWindow)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	body := `
[network]
bind_address = "127.0.0.1:9000"
tick_rate = "100ms"

[match]
rating_window = 250
challenge_ttl = "30s"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Network.BindAddress)
	assert.Equal(t, 100*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 250, cfg.Match.RatingWindow)
	assert.Equal(t, 30*time.Second, cfg.Match.ChallengeTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 16, cfg.Network.MaxPacketsPerTick)
	assert.Equal(t, 4, cfg.AI.Workers)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[network\nbind ="), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
