package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kaizlabs/kaizbot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kaizbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the bot's tokens and chat provider and generates a .kaizbot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
