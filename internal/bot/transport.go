package bot

import (
	"context"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/walaa-halaqat/halaqabot/internal/fetch"
	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// chatTransport adapts one chat to the retriever's Transport. A fresh value
// is created per delivery; it carries no state beyond the chat id.
type chatTransport struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *logrus.Entry
}

// statusMessage is the transient downloading notice for one file.
type statusMessage struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	messageID int
	log       *logrus.Entry
}

// ShowDownloading posts the downloading notice.
func (t *chatTransport) ShowDownloading(ctx context.Context) (fetch.StatusMessage, error) {
	sent, err := t.api.Send(tgbotapi.NewMessage(t.chatID, msgDownloading))
	if err != nil {
		return nil, fmt.Errorf("send downloading notice: %w", err)
	}
	return &statusMessage{api: t.api, chatID: t.chatID, messageID: sent.MessageID, log: t.log}, nil
}

// Done deletes the notice after a successful delivery.
func (s *statusMessage) Done(ctx context.Context) {
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, s.messageID)); err != nil {
		s.log.WithError(err).Warn("failed to delete downloading notice")
	}
}

// Fail replaces the notice with a failure message so it is never left
// hanging.
func (s *statusMessage) Fail(ctx context.Context) {
	if _, err := s.api.Send(tgbotapi.NewEditMessageText(s.chatID, s.messageID, msgDownloadFailed)); err != nil {
		s.log.WithError(err).Warn("failed to edit downloading notice")
	}
}

// SendAudio forwards a downloaded file as audio.
func (t *chatTransport) SendAudio(ctx context.Context, filePath string, ref menu.FileRef) error {
	file, err := openUpload(filePath, ref)
	if err != nil {
		return err
	}
	defer file.close()

	audio := tgbotapi.NewAudio(t.chatID, file.data)
	audio.Caption = ref.Description
	audio.ParseMode = tgbotapi.ModeHTML
	_, err = t.api.Send(audio)
	return err
}

// SendDocument forwards a downloaded file as a document.
func (t *chatTransport) SendDocument(ctx context.Context, filePath string, ref menu.FileRef) error {
	t.chatAction(tgbotapi.ChatUploadDocument)

	file, err := openUpload(filePath, ref)
	if err != nil {
		return err
	}
	defer file.close()

	doc := tgbotapi.NewDocument(t.chatID, file.data)
	doc.Caption = ref.Description
	doc.ParseMode = tgbotapi.ModeHTML
	_, err = t.api.Send(doc)
	return err
}

// SendLinks renders the external links as one HTML anchor list.
func (t *chatTransport) SendLinks(ctx context.Context, links []menu.LinkRef) error {
	var b strings.Builder
	b.WriteString(msgLinksHeader)
	for i, link := range links {
		label := link.Label
		if label == "" {
			label = linkFallbackLabel(i)
		}
		fmt.Fprintf(&b, "🔗 <a href='%s'>%s</a>\n", link.URL, label)
	}

	msg := tgbotapi.NewMessage(t.chatID, b.String())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	return err
}

func (t *chatTransport) chatAction(action string) {
	if _, err := t.api.Request(tgbotapi.NewChatAction(t.chatID, action)); err != nil {
		t.log.WithError(err).Debug("chat action failed")
	}
}

// upload wraps the request file data, keeping the display filename when one
// is declared instead of the scratch file's random name.
type upload struct {
	data tgbotapi.RequestFileData
	f    *os.File
}

func openUpload(filePath string, ref menu.FileRef) (*upload, error) {
	if ref.Filename == "" {
		return &upload{data: tgbotapi.FilePath(filePath)}, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open temp file: %w", err)
	}
	return &upload{data: tgbotapi.FileReader{Name: ref.Filename, Reader: f}, f: f}, nil
}

func (u *upload) close() {
	if u.f != nil {
		u.f.Close()
	}
}
