// Package config loads the client configuration from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	// EnvProduction is the NODE_ENV value that switches to the page's own host.
	EnvProduction = "production"
	// EnvDevelopment is the NODE_ENV default.
	EnvDevelopment = "development"
)

// Config holds runtime settings for the chat bridge.
type Config struct {
	Env       string `env:"NODE_ENV" envDefault:"development"`
	Host      string `env:"CHAT_HOST"`
	DevHost   string `env:"CHAT_DEV_HOST" envDefault:"localhost:3000"`
	Scheme    string `env:"CHAT_WS_SCHEME" envDefault:"ws"`
	Path      string `env:"CHAT_WS_PATH" envDefault:"/"`
	Transport string `env:"CHAT_TRANSPORT" envDefault:"nhooyr"`
	ReadLimit int64  `env:"CHAT_READ_LIMIT" envDefault:"32768"`
	LogLevel  string `env:"CHAT_LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"CHAT_LOG_FILE"`
	Prompt    string `env:"CHAT_PROMPT" envDefault:"What is your name?"`

	Storage Storage `envPrefix:"CHAT_STORAGE_"`
}

// Storage selects and configures the durable identity store.
type Storage struct {
	Backend       string `env:"BACKEND" envDefault:"file"`
	Path          string `env:"PATH"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	Namespace     string `env:"NAMESPACE" envDefault:"chat:profile:"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses Config from the given variables instead of the process
// environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether NODE_ENV selects production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ApplicationHost returns the host the socket endpoint points at: the page's
// own host in production, the development host otherwise.
func (c Config) ApplicationHost() string {
	if c.IsProduction() {
		return c.Host
	}
	return c.DevHost
}

// SocketURL builds the endpoint handed to the connectSocket intent.
func (c Config) SocketURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "ws"
	}
	path := c.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + c.ApplicationHost() + path
}

// Environment is the build-time client environment: every variable as-is,
// and the same mapping with JSON-quoted values for source substitution.
type Environment struct {
	Raw         map[string]string
	Stringified map[string]string
}

// ClientEnvironment collects environ (KEY=VALUE entries, as from os.Environ)
// into an Environment. NODE_ENV is always present.
func ClientEnvironment(environ []string) Environment {
	raw := map[string]string{"NODE_ENV": EnvDevelopment}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if key == "NODE_ENV" && value == "" {
			continue
		}
		raw[key] = value
	}

	stringified := make(map[string]string, len(raw))
	for key, value := range raw {
		quoted, _ := json.Marshal(value)
		stringified[key] = string(quoted)
	}
	return Environment{Raw: raw, Stringified: stringified}
}

// Keys returns the variable names in sorted order.
func (e Environment) Keys() []string {
	keys := make([]string, 0, len(e.Raw))
	for k := range e.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
