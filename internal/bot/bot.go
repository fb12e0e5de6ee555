// Package bot is the Telegram facade: it turns updates into navigation
// events and renders the engine's directives as keyboards, messages and file
// deliveries.
package bot

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/walaa-halaqat/halaqabot/internal/fetch"
	"github.com/walaa-halaqat/halaqabot/internal/menu"
	"github.com/walaa-halaqat/halaqabot/internal/nav"
)

// Options configures the facade.
type Options struct {
	Token         string
	AdminIDs      []int64
	BackLabel     string
	MainMenuLabel string
	// UpdateTimeout is the long-poll timeout in seconds.
	UpdateTimeout int
	// UploadTimeout bounds one send to the Bot API; large files over slow
	// links need minutes, not the default seconds.
	UploadTimeout time.Duration
}

// Bot wires the Telegram transport to the navigation engine, the menu cache
// and the file retriever.
type Bot struct {
	api       *tgbotapi.BotAPI
	opts      Options
	engine    *nav.Engine
	sessions  *nav.Store
	cache     *menu.Cache
	retriever *fetch.Retriever
	log       *logrus.Entry
	wg        sync.WaitGroup
}

// New authenticates against the Bot API and assembles the facade. All
// collaborators are injected; nothing is constructed lazily at first use.
func New(opts Options, engine *nav.Engine, sessions *nav.Store, cache *menu.Cache, retriever *fetch.Retriever) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, err
	}
	if opts.UploadTimeout > 0 {
		api.Client = &http.Client{Timeout: opts.UploadTimeout}
	}
	if opts.UpdateTimeout <= 0 {
		opts.UpdateTimeout = 30
	}

	return &Bot{
		api:       api,
		opts:      opts,
		engine:    engine,
		sessions:  sessions,
		cache:     cache,
		retriever: retriever,
		log:       logrus.WithField("component", "bot"),
	}, nil
}

// Run polls for updates until ctx is done. Each update gets its own
// goroutine; ordering within one user's session comes from the session lock,
// so one user's slow download never stalls another user's navigation.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	b.log.Infof("bot connected as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	log := b.log.WithFields(logrus.Fields{
		"user_id": msg.From.ID,
		"chat_id": msg.Chat.ID,
	})

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg, msgWelcome)
		case "main_menu":
			b.handleStart(ctx, msg, msgBackToMain)
		case "reload_menu":
			b.handleReload(ctx, msg)
		default:
			log.WithField("command", msg.Command()).Debug("ignoring unknown command")
		}
		return
	}

	if msg.Text == "" {
		return
	}
	b.handleNavigation(ctx, msg, log)
}

// handleStart resets the session and renders the root menu.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, greeting string) {
	sess := b.sessions.Get(msg.From.ID)
	b.engine.Reset(sess)

	tree := b.cache.Tree(ctx)
	reply := tgbotapi.NewMessage(msg.Chat.ID, greeting)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = menuKeyboard(tree.Root().Labels(), b.opts.BackLabel, b.opts.MainMenuLabel)
	b.send(reply)
}

// handleReload force-refreshes the menu source. Privileged: non-admins get a
// refusal and no state changes.
func (b *Bot) handleReload(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.log.WithField("user_id", msg.From.ID).Warn("unauthorized reload_menu")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgNotAuthorized))
		return
	}

	if err := b.cache.Reload(ctx); err != nil {
		b.log.WithError(err).Error("menu reload failed")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgReloadFailed))
		return
	}
	b.log.WithField("user_id", msg.From.ID).Info("menu structure reloaded by admin")
	b.send(tgbotapi.NewMessage(msg.Chat.ID, msgReloadOK))
}

// handleNavigation feeds one button press through the engine and acts on the
// resulting directive: deliver content first, then re-render the menu, the
// same order the keyboards are used in.
func (b *Bot) handleNavigation(ctx context.Context, msg *tgbotapi.Message, log *logrus.Entry) {
	sess := b.sessions.Get(msg.From.ID)
	tree := b.cache.Tree(ctx)

	d := b.engine.HandleEvent(sess, tree, msg.Text)

	if d.Deliver != nil {
		tr := &chatTransport{api: b.api, chatID: msg.Chat.ID, log: log}
		if err := b.retriever.Deliver(ctx, d.Deliver.Files, d.Deliver.Links, tr); err != nil {
			log.WithField("label", msg.Text).WithError(err).Error("content delivery incomplete")
		}
	}

	if d.Rejected {
		log.WithFields(logrus.Fields{"label": msg.Text, "path": sess.Path()}).Info("invalid menu choice")
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgInvalidChoice))
	}

	if d.Render != nil {
		b.renderMenu(msg.Chat.ID, d.Render)
	}
}

// renderMenu sends the menu title with the level's keyboard.
func (b *Bot) renderMenu(chatID int64, r *nav.Render) {
	reply := tgbotapi.NewMessage(chatID, menuTitle(r.Title()))
	reply.ReplyMarkup = menuKeyboard(r.Node.Labels(), b.opts.BackLabel, b.opts.MainMenuLabel)
	b.send(reply)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Error("send failed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.opts.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
