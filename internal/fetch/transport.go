package fetch

import (
	"context"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// Transport is the chat-side collaborator that forwards fetched content to
// the user. The Telegram facade implements it per chat.
type Transport interface {
	// ShowDownloading posts the transient "downloading" notice shown for
	// the duration of one file's fetch.
	ShowDownloading(ctx context.Context) (StatusMessage, error)
	// SendAudio forwards a downloaded file as audio.
	SendAudio(ctx context.Context, filePath string, ref menu.FileRef) error
	// SendDocument forwards a downloaded file as a document.
	SendDocument(ctx context.Context, filePath string, ref menu.FileRef) error
	// SendLinks renders the external links of one delivery as a single
	// message. No download is involved.
	SendLinks(ctx context.Context, links []menu.LinkRef) error
}

// StatusMessage is the handle to a transient downloading notice.
type StatusMessage interface {
	// Done removes the notice after a successful delivery.
	Done(ctx context.Context)
	// Fail replaces the notice with a user-visible failure message.
	Fail(ctx context.Context)
}
