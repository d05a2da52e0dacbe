package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
	gamerules "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

// Config はサーバープロセスの設定です。環境変数と、CONFIG_PATHで指定したYAMLファイルから読み込みます。
type Config struct {
	Port           string   `yaml:"port" env:"PORT" env-default:"8080"`
	DatabaseURL    string   `yaml:"database-url" env:"DATABASE_URL"`
	JWTSecret      string   `yaml:"jwt-secret" env:"JWT_SECRET"`
	BypassAuth     bool     `yaml:"bypass-auth" env:"BYPASS_AUTH" env-default:"false"`
	AllowedOrigins []string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	Game           Game     `yaml:"game"`
}

// Game はゲームのルールと速度の設定です。
type Game struct {
	Width           int           `yaml:"width" env:"GAME_WIDTH" env-default:"10"`
	Height          int           `yaml:"height" env:"GAME_HEIGHT" env-default:"42"`
	MoveResetLimit  int           `yaml:"move-reset-limit" env:"GAME_MOVE_RESET_LIMIT" env-default:"15"`
	SpawnX          int           `yaml:"spawn-x" env:"GAME_SPAWN_X" env-default:"3"`
	SpawnY          int           `yaml:"spawn-y" env:"GAME_SPAWN_Y" env-default:"19"`
	CanHoldInfinity bool          `yaml:"can-hold-infinity" env:"GAME_CAN_HOLD_INFINITY" env-default:"false"`
	GarbageCapacity int           `yaml:"garbage-capacity" env:"GAME_GARBAGE_CAPACITY" env-default:"0"`
	GravityInterval time.Duration `yaml:"gravity-interval" env:"GAME_GRAVITY_INTERVAL" env-default:"1s"`
	LockDelay       time.Duration `yaml:"lock-delay" env:"GAME_LOCK_DELAY" env-default:"500ms"`
	TickInterval    time.Duration `yaml:"tick-interval" env:"GAME_TICK_INTERVAL" env-default:"50ms"`
}

// Load は設定を読み込みます。pathが空なら環境変数だけを使います。
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の組み合わせを検証します。
func (c *Config) Validate() error {
	if !c.BypassAuth && c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required unless BYPASS_AUTH is enabled", gamerules.ErrInvalidConfig)
	}
	if c.Game.Width <= 0 || c.Game.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", gamerules.ErrInvalidDimensions, c.Game.Width, c.Game.Height)
	}
	return c.Game.Rules().Validate()
}

// Rules はルール設定を作ります。
func (g Game) Rules() gamerules.Config {
	return gamerules.Config{
		MoveResetLimit:     g.MoveResetLimit,
		AppearancePosition: gamerules.Position{X: g.SpawnX, Y: g.SpawnY},
		CanHoldInfinity:    g.CanHoldInfinity,
		GarbageCapacity:    g.GarbageCapacity,
	}
}

// SessionSettings はSessionManagerに渡す設定を作ります。
func (g Game) SessionSettings() gamerules.SessionSettings {
	return gamerules.SessionSettings{
		Rules:           g.Rules(),
		Width:           g.Width,
		Height:          g.Height,
		GravityInterval: g.GravityInterval,
		LockDelay:       g.LockDelay,
		TickInterval:    g.TickInterval,
	}
}

// IsDefaultBoard は盤面が標準サイズかどうかを返します。
func (g Game) IsDefaultBoard() bool {
	return g.Width == tetris.DefaultBoardWidth && g.Height == tetris.DefaultBoardHeight
}
