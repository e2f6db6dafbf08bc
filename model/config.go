package model

import "time"

// Config holds the process-wide settings loaded at startup.
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	OwnerIDs     []string

	DatabaseDriver string
	DatabaseURL    string

	// DefaultCooldown applies to reactors holding no role with an explicit cooldown.
	DefaultCooldown    time.Duration
	InteractionTimeout time.Duration
	PickupTimeout      time.Duration

	LogLevel  string
	LogFormat string

	MetricsAddr string

	// CleanRate limits platform calls per second during cleanup sweeps.
	CleanRate float64

	DisableCommandUnregister bool
}
