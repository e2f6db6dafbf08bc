package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"score-bot/model"
)

// ConfigFile is read when present; environment variables override it.
const ConfigFile = "data/config.yaml"

func defaults(v *viper.Viper) {
	v.SetDefault("DATABASE_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URL", "data/score.db")
	v.SetDefault("DEFAULT_COOLDOWN", 60)
	v.SetDefault("INTERACTION_TIMEOUT", 60)
	v.SetDefault("PICKUP_TIMEOUT", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("CLEAN_RATE", 5.0)
	v.SetDefault("DISABLE_COMMAND_UNREGISTER", false)
}

// Load loads the configuration from .env, data/config.yaml and the environment.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, relying on environment variables")
	}
	return load(viper.New(), ConfigFile)
}

func load(v *viper.Viper, file string) (*model.Config, error) {
	defaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", file, err)
			}
		}
	}

	token := v.GetString("BOT_TOKEN")
	if token == "" {
		return nil, errors.New("BOT_TOKEN environment variable not set")
	}
	if v.GetString("LOG_CHANNEL_ID") == "" {
		slog.Warn("LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	driver := v.GetString("DATABASE_DRIVER")
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	cfg := &model.Config{
		BotToken:                 token,
		AppID:                    v.GetString("APP_ID"),
		LogChannelID:             v.GetString("LOG_CHANNEL_ID"),
		OwnerIDs:                 splitList(v.GetString("OWNER_IDS")),
		DatabaseDriver:           driver,
		DatabaseURL:              v.GetString("DATABASE_URL"),
		DefaultCooldown:          seconds(v, "DEFAULT_COOLDOWN"),
		InteractionTimeout:       seconds(v, "INTERACTION_TIMEOUT"),
		PickupTimeout:            seconds(v, "PICKUP_TIMEOUT"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogFormat:                v.GetString("LOG_FORMAT"),
		MetricsAddr:              v.GetString("METRICS_ADDR"),
		CleanRate:                v.GetFloat64("CLEAN_RATE"),
		DisableCommandUnregister: v.GetBool("DISABLE_COMMAND_UNREGISTER"),
	}
	if cfg.CleanRate <= 0 {
		return nil, fmt.Errorf("CLEAN_RATE must be positive, got %v", cfg.CleanRate)
	}
	return cfg, nil
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt64(key)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
