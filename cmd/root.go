package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kaizbot",
	Short: "Multi-feature AI assistant bot for Facebook Messenger",
	Long: `KAIZ Bot is a Messenger bot gateway: it receives webhook events from
the Facebook platform, walks each user through a terms-gated
registration flow, and routes their messages to AI chat models,
media downloaders and search backends.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".kaizbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
