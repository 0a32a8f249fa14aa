package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// HTTPDisabled turns the admin API off when used as HTTP_ADDR
const HTTPDisabled = "off"

type Config struct {
	BotToken       string
	OpenCageAPIKey string
	ChannelID      string
	GateSearch     bool
	GeocodeCountry string
	MessagesFile   string

	DatabaseURL string
	SQLitePath  string

	HTTPAddr      string
	JWTSecret     string
	AdminUsername string
	AdminPassword string

	InboundRate  float64
	InboundBurst int

	LogLevel  string
	LogPretty bool
}

// Load reads .env (if present) and the process environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function shaped like os.LookupEnv
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}
		return def
	}

	c := Config{
		BotToken:       get("TELEGRAM_BOT_TOKEN", ""),
		OpenCageAPIKey: get("OPENCAGE_API_KEY", ""),
		ChannelID:      get("CHANNEL_ID", "@Yourchannel"),
		GeocodeCountry: get("GEOCODE_COUNTRY", "de"),
		MessagesFile:   get("MESSAGES_FILE", ""),
		DatabaseURL:    get("DATABASE_URL", ""),
		SQLitePath:     get("SQLITE_PATH", ""),
		HTTPAddr:       get("HTTP_ADDR", "0.0.0.0:8080"),
		JWTSecret:      get("JWT_SECRET", ""),
		AdminUsername:  get("ADMIN_USERNAME", "root"),
		AdminPassword:  get("ADMIN_PASSWORD", ""),
		LogLevel:       get("LOG_LEVEL", "info"),
	}

	var err error
	if c.GateSearch, err = parseBool("GATE_SEARCH", get("GATE_SEARCH", "false")); err != nil {
		return c, err
	}
	if c.LogPretty, err = parseBool("LOG_PRETTY", get("LOG_PRETTY", "false")); err != nil {
		return c, err
	}
	if c.InboundRate, err = strconv.ParseFloat(get("INBOUND_RATE", "0"), 64); err != nil || c.InboundRate < 0 {
		return c, fmt.Errorf("INBOUND_RATE must be zero (off) or a positive number")
	}
	if c.InboundBurst, err = strconv.Atoi(get("INBOUND_BURST", "5")); err != nil || c.InboundBurst < 1 {
		return c, fmt.Errorf("INBOUND_BURST must be a positive integer")
	}

	if c.BotToken == "" {
		return c, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.OpenCageAPIKey == "" {
		return c, fmt.Errorf("OPENCAGE_API_KEY is required")
	}
	if c.ChannelID == "" {
		return c, fmt.Errorf("CHANNEL_ID must not be empty")
	}

	return c, nil
}

// HTTPEnabled reports whether the admin API should listen
func (c Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && !strings.EqualFold(c.HTTPAddr, HTTPDisabled)
}

// InboundLimitEnabled reports whether per-chat flood protection is on.
// INBOUND_RATE unset or 0 leaves it off.
func (c Config) InboundLimitEnabled() bool {
	return c.InboundRate > 0
}

// AuthEnabled reports whether the authenticated admin routes are served
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AdminPassword != ""
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
