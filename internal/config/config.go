package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GameConfig tunes session lifecycle and bot behaviour.
type GameConfig struct {
	// DefaultSeatCount and DefaultBotCount apply when a create request leaves them at zero.
	DefaultSeatCount int `json:"default_seat_count"`
	DefaultBotCount  int `json:"default_bot_count"`

	// MaxBotSteps bounds the bot cascade run after a single request.
	MaxBotSteps int `json:"max_bot_steps"`

	SessionTTLSeconds   int `json:"session_ttl_seconds"`
	ReapIntervalSeconds int `json:"reap_interval_seconds"`

	// LowestTrumpLeads gives the first attack to the seat holding the lowest trump instead of the creator.
	LowestTrumpLeads bool `json:"lowest_trump_leads"`

	BotLevel          string `json:"bot_level"`
	BotIdentitiesPath string `json:"bot_identities_path"`

	// SeatTokenSecret signs seat tokens. A random per-process secret is used when empty,
	// so tokens do not survive a restart.
	SeatTokenSecret     string `json:"seat_token_secret"`
	SeatTokenTTLSeconds int    `json:"seat_token_ttl_seconds"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() GameConfig {
	return GameConfig{
		DefaultSeatCount:    2,
		DefaultBotCount:     1,
		MaxBotSteps:         1000,
		SessionTTLSeconds:   30 * 60,
		ReapIntervalSeconds: 60,
		BotLevel:            "standard",
		SeatTokenTTLSeconds: 24 * 60 * 60,
	}
}

// LoadGameConfig loads the game configuration from the given path on top of Defaults.
func LoadGameConfig(path string) (GameConfig, error) {
	c := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, c.Validate()
}

// ApplyEnv overrides fields from durak_* keys. Nakama passes its runtime env
// this way; the standalone server builds the map with ProcessEnv.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	ints := map[string]*int{
		"durak_default_seat_count":     &c.DefaultSeatCount,
		"durak_default_bot_count":      &c.DefaultBotCount,
		"durak_max_bot_steps":          &c.MaxBotSteps,
		"durak_session_ttl_seconds":    &c.SessionTTLSeconds,
		"durak_reap_interval_seconds":  &c.ReapIntervalSeconds,
		"durak_seat_token_ttl_seconds": &c.SeatTokenTTLSeconds,
	}
	for key, dst := range ints {
		v, ok := env[key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}

	if v := env["durak_lowest_trump_leads"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid durak_lowest_trump_leads %q: %w", v, err)
		}
		c.LowestTrumpLeads = b
	}
	if v := env["durak_bot_level"]; v != "" {
		c.BotLevel = v
	}
	if v := env["durak_bot_identities_path"]; v != "" {
		c.BotIdentitiesPath = v
	}
	if v := env["durak_seat_token_secret"]; v != "" {
		c.SeatTokenSecret = v
	}
	return c.Validate()
}

// Validate rejects values the service cannot run with.
func (c GameConfig) Validate() error {
	if c.DefaultSeatCount < 2 || c.DefaultSeatCount > 6 {
		return fmt.Errorf("default_seat_count must be in [2,6], got %d", c.DefaultSeatCount)
	}
	if c.DefaultBotCount < 0 || c.DefaultBotCount >= c.DefaultSeatCount {
		return fmt.Errorf("default_bot_count must be in [0,%d), got %d", c.DefaultSeatCount, c.DefaultBotCount)
	}
	if c.MaxBotSteps <= 0 {
		return fmt.Errorf("max_bot_steps must be positive, got %d", c.MaxBotSteps)
	}
	if c.SessionTTLSeconds <= 0 || c.ReapIntervalSeconds <= 0 {
		return fmt.Errorf("session_ttl_seconds and reap_interval_seconds must be positive")
	}
	if c.SeatTokenTTLSeconds <= 0 {
		return fmt.Errorf("seat_token_ttl_seconds must be positive, got %d", c.SeatTokenTTLSeconds)
	}
	return nil
}

func (c GameConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c GameConfig) ReapInterval() time.Duration {
	return time.Duration(c.ReapIntervalSeconds) * time.Second
}

func (c GameConfig) SeatTokenTTL() time.Duration {
	return time.Duration(c.SeatTokenTTLSeconds) * time.Second
}

// ProcessEnv collects durak_* variables from the process environment, keys lower-cased.
func ProcessEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(k)
		if strings.HasPrefix(k, "durak_") {
			env[k] = v
		}
	}
	return env
}

// Server holds settings of the standalone HTTP binary.
type Server struct {
	HTTPAddr   string
	LogLevel   slog.Level
	LogFormat  string
	ConfigPath string
}

func LoadServer() (Server, error) {
	s := Server{
		HTTPAddr:   envOr("HTTP_ADDR", ":8080"),
		LogFormat:  strings.ToLower(envOr("LOG_FORMAT", "text")),
		ConfigPath: os.Getenv("DURAK_CONFIG"),
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Server{}, err
	}
	s.LogLevel = level

	if s.LogFormat != "text" && s.LogFormat != "json" {
		return Server{}, fmt.Errorf("invalid LOG_FORMAT %q", s.LogFormat)
	}
	return s, nil
}

// Game loads the game configuration named by DURAK_CONFIG, or Defaults, then applies env overrides.
func (s Server) Game() (GameConfig, error) {
	c := Defaults()
	if s.ConfigPath != "" {
		loaded, err := LoadGameConfig(s.ConfigPath)
		if err != nil {
			return GameConfig{}, err
		}
		c = loaded
	}
	if err := c.ApplyEnv(ProcessEnv()); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
