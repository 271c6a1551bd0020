package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	MasterSecret string
	GinMode      string
	TLSCertFile  string
	TLSKeyFile   string
	TokenExpiry  time.Duration

	SketchfabClientID     string
	SketchfabClientSecret string
	ServerBaseURL         string
	ClientAppURL          string

	UpstreamTimeout time.Duration
	StateFile       string
}

// CallbackURL is the redirect URI registered with Sketchfab. The token
// exchange must send the exact same value the authorize step used.
func (c Config) CallbackURL() string {
	return c.ServerBaseURL + "/api/sketchfab/auth/callback"
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:            3000,
		GinMode:         "release",
		TokenExpiry:     7 * 24 * time.Hour,
		UpstreamTimeout: 30 * time.Second,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	cfg.MasterSecret = env.Getenv("MASTER_SECRET")
	if cfg.MasterSecret == "" {
		return Config{}, fmt.Errorf("MASTER_SECRET is required")
	}

	cfg.SketchfabClientID = env.Getenv("SKETCHFAB_CLIENT_ID")
	if cfg.SketchfabClientID == "" {
		return Config{}, fmt.Errorf("SKETCHFAB_CLIENT_ID is required")
	}
	cfg.SketchfabClientSecret = env.Getenv("SKETCHFAB_CLIENT_SECRET")
	if cfg.SketchfabClientSecret == "" {
		return Config{}, fmt.Errorf("SKETCHFAB_CLIENT_SECRET is required")
	}

	cfg.ServerBaseURL = strings.TrimRight(env.Getenv("SERVER_BASE_URL"), "/")
	if cfg.ServerBaseURL == "" {
		return Config{}, fmt.Errorf("SERVER_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.ServerBaseURL); err != nil {
		return Config{}, fmt.Errorf("invalid SERVER_BASE_URL")
	}

	cfg.ClientAppURL = env.Getenv("CLIENT_APP_URL")
	if cfg.ClientAppURL == "" {
		return Config{}, fmt.Errorf("CLIENT_APP_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.ClientAppURL); err != nil {
		return Config{}, fmt.Errorf("invalid CLIENT_APP_URL")
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	if raw := env.Getenv("TOKEN_EXPIRY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_EXPIRY_SECONDS")
		}
		cfg.TokenExpiry = time.Duration(seconds) * time.Second
	}

	// Bounds every call to Sketchfab. There is deliberately no retry knob:
	// upstream failures surface to the caller immediately.
	if raw := env.Getenv("UPSTREAM_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT_SECONDS")
		}
		cfg.UpstreamTimeout = time.Duration(seconds) * time.Second
	}

	cfg.StateFile = env.Getenv("STATE_FILE")

	return cfg, nil
}
