// Package cli defines the halaqabot command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walaa-halaqat/halaqabot/internal/config"
	"github.com/walaa-halaqat/halaqabot/internal/logging"
	"github.com/walaa-halaqat/halaqabot/internal/menu"
	"github.com/walaa-halaqat/halaqabot/internal/source/jsonfile"
	"github.com/walaa-halaqat/halaqabot/internal/source/sheets"
	"github.com/walaa-halaqat/halaqabot/internal/source/sqlmenu"
)

var (
	// Version is set at build time.
	Version = "dev"

	configPath string
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "halaqabot",
		Short:         "Telegram menu-navigation bot for study materials",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "halaqabot.yaml", "path to the configuration file")

	root.AddCommand(newRunCommand())
	root.AddCommand(newCheckMenuCommand())
	root.AddCommand(newVersionCommand())

	// bare `halaqabot` runs the bot
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	}
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("halaqabot %s\n", Version)
		},
	}
}

// loadConfig loads configuration and applies logging setup.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}

// buildSource constructs the configured menu backend, wrapped so reserved
// labels are rejected at load time.
func buildSource(cfg *config.Config) (menu.Source, error) {
	var src menu.Source
	switch cfg.Source.Kind {
	case config.SourceJSON:
		src = jsonfile.New(cfg.Source.JSONPath)
	case config.SourceSQLite:
		s, err := sqlmenu.Open(cfg.Source.SQLitePath)
		if err != nil {
			return nil, err
		}
		src = s
	case config.SourceSheets:
		src = sheets.New(cfg.Source.SpreadsheetID, cfg.Source.GoogleAPIKey)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
	return menu.Validated(src, cfg.Menu.BackLabel, cfg.Menu.MainMenuLabel), nil
}
