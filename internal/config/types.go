package config

import "time"

// ChatProvider selects which backend answers freeform AI chat.
type ChatProvider string

const (
	// ProviderAggregator routes chat through the aggregator API, the same
	// service that backs downloads and search.
	ProviderAggregator ChatProvider = "aggregator"
	// ProviderOpenAI routes chat and image analysis through the OpenAI
	// Chat Completions API instead.
	ProviderOpenAI ChatProvider = "openai"
)

// Config is the top-level kaizbot configuration, corresponding to .kaizbot.yml.
type Config struct {
	Port            int           `yaml:"port" koanf:"port"`
	PageAccessToken string        `yaml:"page_access_token" koanf:"page_access_token"`
	VerifyToken     string        `yaml:"verify_token" koanf:"verify_token"`
	AppSecret       string        `yaml:"app_secret" koanf:"app_secret"`
	APIKey          string        `yaml:"api_key" koanf:"api_key"`
	APIBase         string        `yaml:"api_base" koanf:"api_base"`
	ChatProvider    ChatProvider  `yaml:"chat_provider" koanf:"chat_provider"`
	OpenAIAPIKey    string        `yaml:"openai_api_key" koanf:"openai_api_key"`
	OpenAIModel     string        `yaml:"openai_model" koanf:"openai_model"`
	WelcomeDelay    time.Duration `yaml:"welcome_delay" koanf:"welcome_delay"`
	TermsFile       string        `yaml:"terms_file" koanf:"terms_file"`
	PublicURL       string        `yaml:"public_url" koanf:"public_url"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Verbose         bool          `yaml:"verbose" koanf:"verbose"`
}
