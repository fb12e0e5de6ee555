package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/walaa-halaqat/halaqabot/internal/bot"
	"github.com/walaa-halaqat/halaqabot/internal/config"
	"github.com/walaa-halaqat/halaqabot/internal/fetch"
	"github.com/walaa-halaqat/halaqabot/internal/menu"
	"github.com/walaa-halaqat/halaqabot/internal/nav"
	"github.com/walaa-halaqat/halaqabot/internal/source/jsonfile"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}
}

// runBot assembles all collaborators and polls until SIGINT/SIGTERM.
func runBot(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}
	cache := menu.NewCache(src, cfg.CacheTTL())

	// editing the JSON file should show up without waiting out the TTL
	var watcher *jsonfile.Watcher
	if cfg.Source.Kind == config.SourceJSON {
		watcher, err = jsonfile.Watch(cfg.Source.JSONPath, cache.Invalidate)
		if err != nil {
			logrus.WithError(err).Warn("menu file watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	retriever, err := fetch.New(fetch.Options{
		Timeout:   cfg.DownloadTimeout(),
		TempDir:   cfg.Download.TempDir,
		AudioExts: cfg.Download.AudioExtensions,
		AuthToken: cfg.Download.AuthToken,
		AuthHosts: cfg.Download.AuthHosts,
	})
	if err != nil {
		return err
	}

	sessions := nav.NewStore(cfg.SessionIdle())
	engine := nav.NewEngine(nav.Config{
		BackLabel:                   cfg.Menu.BackLabel,
		MainMenuLabel:               cfg.Menu.MainMenuLabel,
		SuppressRenderAfterDelivery: cfg.Menu.SuppressRenderAfterDelivery,
	})

	b, err := bot.New(bot.Options{
		Token:         cfg.Token,
		AdminIDs:      cfg.AdminIDs,
		BackLabel:     cfg.Menu.BackLabel,
		MainMenuLabel: cfg.Menu.MainMenuLabel,
		UploadTimeout: cfg.UploadTimeout(),
	}, engine, sessions, cache, retriever)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retriever.StartSweeper(ctx, cfg.SweepInterval(), cfg.Retention())
	sessions.StartEvictor(cfg.SessionIdle(), ctx.Done())

	logrus.WithField("source", cfg.Source.Kind).Info("starting halaqabot")
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
