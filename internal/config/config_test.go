package config_test

import (
	"testing"

	"github.com/omochice/chat-bridge/internal/config"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Env != config.EnvDevelopment {
		t.Errorf("Env = %q, want %q", cfg.Env, config.EnvDevelopment)
	}
	if cfg.Transport != "nhooyr" {
		t.Errorf("Transport = %q, want %q", cfg.Transport, "nhooyr")
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "file")
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("ReadLimit = %d, want 32768", cfg.ReadLimit)
	}
}

func TestLoadFrom_StorageBlock(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"CHAT_STORAGE_BACKEND":    "redis",
		"CHAT_STORAGE_REDIS_ADDR": "cache:6380",
		"CHAT_STORAGE_REDIS_DB":   "3",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Storage.Backend != "redis" {
		t.Errorf("Storage.Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.Storage.RedisAddr != "cache:6380" {
		t.Errorf("Storage.RedisAddr = %q", cfg.Storage.RedisAddr)
	}
	if cfg.Storage.RedisDB != 3 {
		t.Errorf("Storage.RedisDB = %d, want 3", cfg.Storage.RedisDB)
	}
}

func TestLoadFrom_InvalidNumber(t *testing.T) {
	_, err := config.LoadFrom(map[string]string{"CHAT_READ_LIMIT": "lots"})
	if err == nil {
		t.Error("expected error for non-numeric read limit")
	}
}

func TestConfig_SocketURL(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{
			name: "development uses dev host",
			vars: map[string]string{},
			want: "ws://localhost:3000/",
		},
		{
			name: "production uses page host",
			vars: map[string]string{"NODE_ENV": "production", "CHAT_HOST": "chat.example.com"},
			want: "ws://chat.example.com/",
		},
		{
			name: "production ignores dev host",
			vars: map[string]string{"NODE_ENV": "production", "CHAT_HOST": "chat.example.com", "CHAT_DEV_HOST": "dev:1"},
			want: "ws://chat.example.com/",
		},
		{
			name: "custom scheme and path",
			vars: map[string]string{"CHAT_WS_SCHEME": "wss", "CHAT_WS_PATH": "socket"},
			want: "wss://localhost:3000/socket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadFrom(tt.vars)
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			if got := cfg.SocketURL(); got != tt.want {
				t.Errorf("SocketURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientEnvironment(t *testing.T) {
	env := config.ClientEnvironment([]string{"API_KEY=abc", "QUOTE=say \"hi\"", "broken"})

	if env.Raw["NODE_ENV"] != config.EnvDevelopment {
		t.Errorf("Raw[NODE_ENV] = %q, want %q", env.Raw["NODE_ENV"], config.EnvDevelopment)
	}
	if env.Raw["API_KEY"] != "abc" {
		t.Errorf("Raw[API_KEY] = %q", env.Raw["API_KEY"])
	}
	if env.Stringified["API_KEY"] != `"abc"` {
		t.Errorf("Stringified[API_KEY] = %q", env.Stringified["API_KEY"])
	}
	if env.Stringified["QUOTE"] != `"say \"hi\""` {
		t.Errorf("Stringified[QUOTE] = %q", env.Stringified["QUOTE"])
	}
	if _, ok := env.Raw["broken"]; ok {
		t.Error("expected entry without '=' to be skipped")
	}

	keys := env.Keys()
	if len(keys) != 3 || keys[0] != "API_KEY" || keys[1] != "NODE_ENV" || keys[2] != "QUOTE" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestClientEnvironment_KeepsNodeEnv(t *testing.T) {
	env := config.ClientEnvironment([]string{"NODE_ENV=production"})
	if env.Raw["NODE_ENV"] != "production" {
		t.Errorf("Raw[NODE_ENV] = %q, want production", env.Raw["NODE_ENV"])
	}
}
