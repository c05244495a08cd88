package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (KAIZBOT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: KAIZBOT_PORT -> port, etc.
	if err := k.Load(env.Provider("KAIZBOT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "KAIZBOT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validChatProviders is the set of recognized chat provider values.
var validChatProviders = map[ChatProvider]bool{
	ProviderAggregator: true,
	ProviderOpenAI:     true,
}

// Validate checks that the configuration contains valid values for serving.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PageAccessToken == "" {
		return fmt.Errorf("page_access_token is required")
	}

	if c.VerifyToken == "" {
		return fmt.Errorf("verify_token is required")
	}

	if !validChatProviders[c.ChatProvider] {
		return fmt.Errorf("invalid chat_provider %q: must be one of aggregator, openai", c.ChatProvider)
	}

	if c.ChatProvider == ProviderAggregator && c.APIKey == "" {
		return fmt.Errorf("api_key is required when chat_provider is aggregator")
	}

	if c.ChatProvider == ProviderOpenAI && c.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("openai_api_key (or OPENAI_API_KEY) is required when chat_provider is openai")
	}

	if c.WelcomeDelay < 0 {
		return fmt.Errorf("welcome_delay must be non-negative")
	}

	return nil
}
