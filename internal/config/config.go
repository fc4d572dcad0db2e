package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Proxy   ProxyConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

type StorageConfig struct {
	DataDir string
}

type ProxyConfig struct {
	OpenRouterAPIKey string
	DefaultModel     string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    8000,
			MCPPort: 8001,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Proxy: ProxyConfig{
			DefaultModel: "openai/gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.docent.app) and secrets
// fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/docent/config.json
// and secrets must be provided via environment variables.
//
// Environment variables (DOCENT_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b Backend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try platform keychain for API key if still empty.
	if cfg.Proxy.OpenRouterAPIKey == "" {
		if key, err := kc.Get("docent", "openrouter_api_key"); err == nil && key != "" {
			cfg.Proxy.OpenRouterAPIKey = key
		}
	}

	if cfg.Proxy.OpenRouterAPIKey == "" {
		msg := "missing required config: OpenRouter API key. " +
			"Set it via environment variable DOCENT_OPENROUTER_API_KEY" +
			apiKeyHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
