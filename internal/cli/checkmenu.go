package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

func newCheckMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-menu",
		Short: "Load the configured menu source once and print the tree",
		Long: "Loads the menu from the configured source, validates reserved labels " +
			"and prints an outline. Useful before deploying a menu change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src, err := buildSource(cfg)
			if err != nil {
				return err
			}

			tree, err := src.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("menu load failed: %w", err)
			}

			nodes, leaves := 0, 0
			tree.Walk(func(path []string, n *menu.Node) {
				if len(path) == 0 {
					return
				}
				nodes++
				if n.HasContent() {
					leaves++
				}
				fmt.Printf("%s%s%s\n", strings.Repeat("  ", len(path)-1), path[len(path)-1], contentSuffix(n))
			})
			fmt.Printf("\n%d entries, %d with content\n", nodes, leaves)
			return nil
		},
	}
}

func contentSuffix(n *menu.Node) string {
	if !n.HasContent() {
		return ""
	}
	return fmt.Sprintf("  [%d files, %d links]", len(n.Files), len(n.Links))
}
