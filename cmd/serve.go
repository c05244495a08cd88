package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/activity"
	"github.com/kaizlabs/kaizbot/internal/capability"
	"github.com/kaizlabs/kaizbot/internal/config"
	"github.com/kaizlabs/kaizbot/internal/dispatch"
	"github.com/kaizlabs/kaizbot/internal/messenger"
	"github.com/kaizlabs/kaizbot/internal/register"
	"github.com/kaizlabs/kaizbot/internal/server"
	"github.com/kaizlabs/kaizbot/internal/session"
	"github.com/kaizlabs/kaizbot/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Messenger webhook server",
	Long: `Starts the HTTP server that terminates the Facebook webhook, serves the
out-of-band registration page, and exposes the operator activity feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose {
			cfg.Verbose = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		log, err := buildLogger(cfg.Verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer log.Sync()

		// Capability backends. The aggregator client always exists; the
		// OpenAI provider layers over it for chat and image analysis only.
		var caps capability.Registry = capability.NewClient(cfg.APIKey, cfg.APIBase)
		if cfg.ChatProvider == config.ProviderOpenAI {
			key := cfg.OpenAIAPIKey
			if key == "" {
				key = os.Getenv("OPENAI_API_KEY")
			}
			caps = capability.NewOpenAIChat(key, cfg.OpenAIModel, caps)
		}

		sessions := session.NewStore()
		sender := messenger.NewClient(cfg.PageAccessToken)
		hub := activity.NewHub(log)

		engine := dispatch.NewEngine(sessions, caps, sender, hub, log)
		engine.SetWelcomeDelay(cfg.WelcomeDelay)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, sessions, log)

		webhook.NewHandler(engine, cfg.VerifyToken, cfg.AppSecret, log).RegisterRoutes(srv.Router())
		register.NewHandler(sessions, engine, cfg.TermsFile, log).RegisterRoutes(srv.Router())
		activity.RegisterRoutes(srv.Router(), hub)

		// Graceful shutdown on SIGINT/SIGTERM.
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		log.Info("kaizbot started",
			zap.Int("port", cfg.Port),
			zap.String("chat_provider", string(cfg.ChatProvider)))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

// buildLogger creates the process logger. Verbose mode enables debug level
// and development-style output.
func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		zc := zap.NewDevelopmentConfig()
		return zc.Build()
	}
	zc := zap.NewProductionConfig()
	return zc.Build()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
