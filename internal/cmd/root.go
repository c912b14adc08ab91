// Package cmd holds the askdb CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"askdb/internal/app"
	"askdb/pkg/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	flagConfig  string
	flagBaseURL string
	flagUser    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Chat with your database from the terminal",
	Long: `askdb is a terminal client for the ask_db service: ask questions in
plain language, browse threads and bookmarks, and export tabular
answers to spreadsheets.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path (default is $HOME/.askdb.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "ask_db service base URL")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user id to act as")
}

// newApp assembles the runtime from the persistent flags.
func newApp(cmd *cobra.Command) (*app.App, error) {
	flags := config.Flags{
		Config:  flagConfig,
		BaseURL: flagBaseURL,
		UserID:  flagUser,
		Set:     map[string]bool{},
	}
	if cmd.Flags().Changed("config") {
		flags.Set["config"] = true
	}
	if flags.Config == "" {
		if home, err := os.UserHomeDir(); err == nil {
			flags.Config = home + "/.askdb.yaml"
		}
	}
	return app.New(flags)
}
