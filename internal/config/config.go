package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Broadcast modes. Exactly one delivery strategy is active per deployment;
// polling clients work against either.
const (
	ModePush  = "push"
	ModeRelay = "relay"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Fan-out
	BroadcastMode string // "push" (SSE hub) or "relay" (Redis publish)
	RedisURL      string // required in relay mode

	// Agent responder gateway
	AgentCommand string // external backend command line; empty disables real calls
	AgentTimeout time.Duration

	// Optional collaborators
	SessionDir string // health probe session directory; empty disables
	RosterPath string // JSON roster override; empty uses the built-in roster

	// Bounded logs
	MessageCap  int
	ActivityCap int
}

// Load reads configuration from environment variables. In development, it
// loads from a .env file if present. In production, relay mode without a
// Redis URL panics.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		BroadcastMode: getEnv("BROADCAST_MODE", ModePush),
		RedisURL:      os.Getenv("REDIS_URL"),
		AgentCommand:  os.Getenv("AGENT_CMD"),
		AgentTimeout:  getDuration("AGENT_TIMEOUT", 120*time.Second),
		SessionDir:    os.Getenv("SESSION_DIR"),
		RosterPath:    os.Getenv("ROSTER_PATH"),
		MessageCap:    getInt("MESSAGE_CAP", 500),
		ActivityCap:   getInt("ACTIVITY_CAP", 100),
	}

	if cfg.BroadcastMode != ModePush && cfg.BroadcastMode != ModeRelay {
		panic("BROADCAST_MODE must be push or relay")
	}
	if cfg.BroadcastMode == ModeRelay && cfg.RedisURL == "" {
		panic("REDIS_URL is required in relay mode")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
