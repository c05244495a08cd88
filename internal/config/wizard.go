package config

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .kaizbot.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to kaizbot! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Page access token.
	tokenPrompt := promptui.Prompt{
		Label: "Facebook Page access token",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("token must not be empty")
			}
			return nil
		},
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("page access token: %w", err)
	}
	cfg.PageAccessToken = token

	// 2. Webhook verify token.
	verifyPrompt := promptui.Prompt{
		Label:   "Webhook verify token",
		Default: cfg.VerifyToken,
	}
	verify, err := verifyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	cfg.VerifyToken = verify

	// 3. Chat provider selection.
	providerPrompt := promptui.Select{
		Label: "Select chat provider",
		Items: []string{"aggregator", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chat provider selection: %w", err)
	}
	cfg.ChatProvider = ChatProvider(providerStr)

	// 4. API key for the selected provider.
	switch cfg.ChatProvider {
	case ProviderAggregator:
		keyPrompt := promptui.Prompt{
			Label: "Aggregator API key",
			Mask:  '*',
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("api key: %w", err)
		}
		cfg.APIKey = key
	case ProviderOpenAI:
		keyPrompt := promptui.Prompt{
			Label: "OpenAI API key (blank to use OPENAI_API_KEY)",
			Mask:  '*',
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("openai api key: %w", err)
		}
		cfg.OpenAIAPIKey = key
	}

	// 5. Public URL for the registration page link.
	urlPrompt := promptui.Prompt{
		Label:   "Public base URL (for the /register page link)",
		Default: "",
	}
	publicURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("public url: %w", err)
	}
	cfg.PublicURL = publicURL

	if err := cfg.Save(".kaizbot.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .kaizbot.yml")
	fmt.Println("Point your Facebook webhook at <public-url>/webhook and run `kaizbot serve`.")

	return cfg, nil
}
