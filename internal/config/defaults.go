package config

import "time"

// DefaultAPIBase is the aggregator API endpoint the bot was built against.
const DefaultAPIBase = "https://kaiz-apis.gleeze.com/api"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:         5000,
		VerifyToken:  "kaiz_bot_verify_token",
		APIBase:      DefaultAPIBase,
		ChatProvider: ProviderAggregator,
		OpenAIModel:  "gpt-4o-mini",
		WelcomeDelay: 2 * time.Second,
		TermsFile:    "terms.md",
	}
}
