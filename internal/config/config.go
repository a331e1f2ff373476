package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	ListenAddr string

	// Environment selects the logger profile ("development" or "production").
	Environment string

	// DiscordBotToken authenticates the outbound Discord REST client.
	// If empty, every delivery attempt will fail at the transport.
	DiscordBotToken string

	// MonitoringRetentionDays is how long monitoring entries are kept
	// before the retention worker purges them. 0 disables the purge;
	// entries are then kept forever.
	MonitoringRetentionDays int

	// Bootstrap values seed an owner, their Discord destination and an
	// API key on startup so a fresh deployment can be smoke-tested
	// without the management surface. The key is only created when
	// BootstrapOwnerID and BootstrapAPIKey are both set.
	BootstrapOwnerID       string
	BootstrapAPIKey        string
	BootstrapDiscordUserID string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:             os.Getenv("APP_DATABASE_URL"),
		ListenAddr:              getenv("APP_LISTEN_ADDR", ":8080"),
		Environment:             getenv("APP_ENVIRONMENT", "development"),
		DiscordBotToken:         os.Getenv("APP_DISCORD_BOT_TOKEN"),
		MonitoringRetentionDays: 0,
		BootstrapOwnerID:        os.Getenv("APP_BOOTSTRAP_OWNER_ID"),
		BootstrapAPIKey:         os.Getenv("APP_BOOTSTRAP_API_KEY"),
		BootstrapDiscordUserID:  os.Getenv("APP_BOOTSTRAP_DISCORD_USER_ID"),
	}

	if v := os.Getenv("APP_MONITORING_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.MonitoringRetentionDays = days
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
