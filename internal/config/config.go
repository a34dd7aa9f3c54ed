package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/vecgfx/internal/emit"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	// Script templates; empty keeps the built-in prologue/epilogue
	ScriptPrologue string `envconfig:"SCRIPT_PROLOGUE"`
	ScriptEpilogue string `envconfig:"SCRIPT_EPILOGUE"`

	SizeUnit    emit.SizeUnit `envconfig:"SIZE_UNIT" default:"px"`
	SizeScaling float32       `envconfig:"SIZE_SCALING" default:"1"`

	FontPath string `envconfig:"FONT_PATH"`
	FontDir  string `envconfig:"FONT_DIR" default:"./data/fonts"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SizeScaling <= 0 {
		return nil, fmt.Errorf("SIZE_SCALING must be positive, got %v", cfg.SizeScaling)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RenderOptions are the server-wide defaults for drawings without options.
func (c *Config) RenderOptions() emit.Options {
	return emit.Options{Unit: c.SizeUnit, Scaling: c.SizeScaling}
}

func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
