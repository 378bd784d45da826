package core

import (
	"fmt"
	"strings"
	"time"
)

type CallbackConfig struct {
	Path            string `koanf:"path" mapstructure:"path"`
	DefaultRedirect string `koanf:"default_redirect" mapstructure:"default_redirect"`
}

type StateConfig struct {
	TTLSeconds int `koanf:"ttl_seconds" mapstructure:"ttl_seconds"`
	MaxEntries int `koanf:"max_entries" mapstructure:"max_entries"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Callback    CallbackConfig `koanf:"callback" mapstructure:"callback"`
	State       StateConfig    `koanf:"state" mapstructure:"state"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "connect",
		Callback: CallbackConfig{
			Path:            "/auth/callback",
			DefaultRedirect: "/",
		},
		State: StateConfig{
			TTLSeconds: int(defaultAuthStateTTL / time.Second),
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if path := strings.TrimSpace(c.Callback.Path); path != "" && !strings.HasPrefix(path, "/") {
		return fmt.Errorf("core: callback path must start with /")
	}
	if c.State.TTLSeconds < 0 {
		return fmt.Errorf("core: state ttl_seconds must be >= 0")
	}
	return nil
}

func (c Config) stateTTL() time.Duration {
	if c.State.TTLSeconds <= 0 {
		return defaultAuthStateTTL
	}
	return time.Duration(c.State.TTLSeconds) * time.Second
}

func (c Config) callbackPath() string {
	path := strings.TrimSpace(c.Callback.Path)
	if path == "" {
		return "/auth/callback"
	}
	return path
}

func (c Config) defaultRedirect() string {
	redirect := strings.TrimSpace(c.Callback.DefaultRedirect)
	if redirect == "" {
		return "/"
	}
	return redirect
}
