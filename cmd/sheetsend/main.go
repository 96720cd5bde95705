package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenmice/sheetsend/internal/app"
	"github.com/greenmice/sheetsend/internal/config"
)

var (
	cfgFile   string
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sheetsend",
	Short: "Sheetsend - spreadsheet mail-merge campaigns over Gmail",
	Long: `Sheetsend reads a contact table from a Google Sheet or CSV file,
sends one personalized HTML message per row through the Gmail API, and
writes the delivery log (including the permanent Message-ID needed for
threaded follow-ups) back into the table.`,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sheetsend version %s\n", version)
		if commit != "unknown" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}

// loadApp loads the config and assembles the application. Callers own the
// returned app and must Close it.
func loadApp() (*app.App, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return app.New(cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Auth mode:   %s\n", cfg.Google.AuthMode)
	fmt.Printf("  Spreadsheet: %s\n", cfg.Sheet.Spreadsheet)
	fmt.Printf("  Storage:     %s\n", cfg.Storage.Path)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics:     %s%s\n", cfg.Metrics.ListenAddr, cfg.Metrics.Path)
	}
	return nil
}
