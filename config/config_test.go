package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("OWNER_IDS", " 1, 2 ,,")

	cfg, err := load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, 60*time.Second, cfg.DefaultCooldown)
	assert.Equal(t, 300*time.Second, cfg.PickupTimeout)
	assert.Equal(t, []string{"1", "2"}, cfg.OwnerIDs)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("BOT_TOKEN: fromfile\nDEFAULT_COOLDOWN: 15\nDATABASE_DRIVER: postgres\n"), 0o644))
	t.Setenv("DEFAULT_COOLDOWN", "30")

	cfg, err := load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, "fromfile", cfg.BotToken)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Second, cfg.DefaultCooldown)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := load(viper.New(), "")
	assert.ErrorContains(t, err, "BOT_TOKEN")

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err = load(viper.New(), "")
	assert.ErrorContains(t, err, "mysql")
}
