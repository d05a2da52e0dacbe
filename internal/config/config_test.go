package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gamerules "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// Given
		t.Setenv("JWT_SECRET", "secret")

		// When
		cfg, err := Load("")

		// Then
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
		assert.Equal(t, 10, cfg.Game.Width)
		assert.Equal(t, 42, cfg.Game.Height)
		assert.Equal(t, time.Second, cfg.Game.GravityInterval)
		assert.Equal(t, 500*time.Millisecond, cfg.Game.LockDelay)
		assert.True(t, cfg.Game.IsDefaultBoard())
		assert.Equal(t, gamerules.DefaultConfig(), cfg.Game.Rules())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("GAME_MOVE_RESET_LIMIT", "-1")
		t.Setenv("GAME_CAN_HOLD_INFINITY", "true")
		t.Setenv("GAME_LOCK_DELAY", "1s")

		cfg, err := Load("")

		require.NoError(t, err)
		settings := cfg.Game.SessionSettings()
		assert.Equal(t, -1, settings.Rules.MoveResetLimit)
		assert.True(t, settings.Rules.CanHoldInfinity)
		assert.Equal(t, time.Second, settings.LockDelay)
	})

	t.Run("secret is required", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("BYPASS_AUTH", "false")

		_, err := Load("")

		assert.ErrorIs(t, err, gamerules.ErrInvalidConfig)
	})

	t.Run("bypass does not need a secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("BYPASS_AUTH", "true")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.True(t, cfg.BypassAuth)
	})

	t.Run("bad move reset limit", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("GAME_MOVE_RESET_LIMIT", "-5")

		_, err := Load("")

		assert.ErrorIs(t, err, gamerules.ErrInvalidConfig)
	})
}

func TestLoad_FromFile(t *testing.T) {
	// Given: a YAML file with a smaller board
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9090"
jwt-secret: file-secret
game:
  width: 8
  height: 30
  spawn-x: 2
  spawn-y: 10
  garbage-capacity: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, 8, cfg.Game.Width)
	assert.False(t, cfg.Game.IsDefaultBoard())
	rules := cfg.Game.Rules()
	assert.Equal(t, gamerules.Position{X: 2, Y: 10}, rules.AppearancePosition)
	assert.Equal(t, 12, rules.GarbageCapacity)
	assert.Equal(t, 15, rules.MoveResetLimit, "unset fields keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
