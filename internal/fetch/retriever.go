package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// defaultAudioExts covers the formats the bot forwards as audio when the
// declared type is unspecified. Everything else goes out as a document.
var defaultAudioExts = []string{".mp3", ".m4a", ".wav", ".ogg"}

// Options configures a Retriever.
type Options struct {
	// Timeout bounds a single download. Files travel over slow links, so
	// this is on the order of minutes.
	Timeout time.Duration
	// TempDir holds the per-delivery scratch files. Created if missing.
	TempDir string
	// AudioExts overrides the audio extension set. Entries match
	// case-insensitively against the URL path extension.
	AudioExts []string
	// AuthToken, when set, is attached as apikey and bearer headers to
	// requests whose host contains one of AuthHosts.
	AuthToken string
	AuthHosts []string
}

// Retriever downloads menu-leaf content and hands it to a Transport. Each
// file gets a uniquely named scratch file that is removed on every exit
// path; a periodic sweep catches leftovers from crashes mid-delivery.
type Retriever struct {
	client    *http.Client
	opts      Options
	audioExts map[string]struct{}
	log       *logrus.Entry
}

// New creates a Retriever and ensures the temp directory exists.
func New(opts Options) (*Retriever, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "halaqabot")
	}
	if err := os.MkdirAll(opts.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	exts := opts.AudioExts
	if len(exts) == 0 {
		exts = defaultAudioExts
	}
	audio := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		audio[strings.ToLower(ext)] = struct{}{}
	}

	return &Retriever{
		client:    &http.Client{Timeout: opts.Timeout},
		opts:      opts,
		audioExts: audio,
		log:       logrus.WithField("component", "fetch"),
	}, nil
}

// Download performs a single GET of rawURL, first rewriting recognized share
// links to their direct form. Failures come back as *DownloadError; there is
// no automatic retry.
func (r *Retriever) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if direct, ok := ResolveIndirectLink(rawURL); ok {
		r.log.WithFields(logrus.Fields{"url": rawURL, "direct": direct}).Debug("rewrote share link")
		rawURL = direct
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &DownloadError{Kind: FailOther, URL: rawURL, Cause: err}
	}
	r.applyAuth(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{Kind: FailHTTPStatus, URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(rawURL, err)
	}

	r.log.WithFields(logrus.Fields{"url": rawURL, "bytes": len(data)}).Info("downloaded file")
	return data, nil
}

func (r *Retriever) applyAuth(req *http.Request) {
	if r.opts.AuthToken == "" {
		return
	}
	host := req.URL.Host
	for _, h := range r.opts.AuthHosts {
		if h != "" && strings.Contains(host, h) {
			req.Header.Set("apikey", r.opts.AuthToken)
			req.Header.Set("Authorization", "Bearer "+r.opts.AuthToken)
			return
		}
	}
}

// Deliver fetches every file and forwards every link of one delivery.
// Each item is attempted independently: one failure is reported to the user
// through its status message and the siblings still go out. The returned
// error joins the individual failures for logging.
func (r *Retriever) Deliver(ctx context.Context, files []menu.FileRef, links []menu.LinkRef, tr Transport) error {
	var errs []error
	for _, ref := range files {
		if err := r.deliverFile(ctx, ref, tr); err != nil {
			r.log.WithFields(logrus.Fields{"url": ref.URL}).WithError(err).Error("file delivery failed")
			errs = append(errs, err)
		}
	}
	if len(links) > 0 {
		if err := tr.SendLinks(ctx, links); err != nil {
			r.log.WithError(err).Error("link delivery failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Retriever) deliverFile(ctx context.Context, ref menu.FileRef, tr Transport) error {
	status, err := tr.ShowDownloading(ctx)
	if err != nil {
		return fmt.Errorf("show status: %w", err)
	}

	data, err := r.Download(ctx, ref.URL)
	if err != nil {
		status.Fail(ctx)
		return err
	}

	tmpPath := filepath.Join(r.opts.TempDir, uuid.NewString()+fileExt(ref))
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		status.Fail(ctx)
		return fmt.Errorf("write temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	switch r.fileKind(ref) {
	case menu.FileAudio:
		err = tr.SendAudio(ctx, tmpPath, ref)
	default:
		err = tr.SendDocument(ctx, tmpPath, ref)
	}
	if err != nil {
		status.Fail(ctx)
		return fmt.Errorf("send %s: %w", ref.URL, err)
	}

	status.Done(ctx)
	return nil
}

// fileKind returns the declared type, falling back to extension inference.
func (r *Retriever) fileKind(ref menu.FileRef) menu.FileType {
	if ref.Type != menu.FileUnspecified {
		return ref.Type
	}
	if _, ok := r.audioExts[urlExt(ref.URL)]; ok {
		return menu.FileAudio
	}
	return menu.FileDocument
}

// fileExt picks the scratch-file extension from the filename or URL.
func fileExt(ref menu.FileRef) string {
	if ext := strings.ToLower(filepath.Ext(ref.Filename)); ext != "" {
		return ext
	}
	if ext := urlExt(ref.URL); ext != "" {
		return ext
	}
	return ".bin"
}

// urlExt extracts the lowercase extension of the URL path, ignoring the
// query string.
func urlExt(rawURL string) string {
	clean := rawURL
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	return strings.ToLower(path.Ext(clean))
}

// Sweep deletes temp files older than maxAge and returns how many went.
// Per-request cleanup already removes scratch files on every exit path; the
// sweep is the safety net for crashes mid-delivery.
func (r *Retriever) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(r.opts.TempDir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(r.opts.TempDir, entry.Name())); err != nil {
				r.log.WithError(err).Warn("failed to remove stale temp file")
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (r *Retriever) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := r.Sweep(maxAge); err != nil {
					r.log.WithError(err).Warn("temp sweep failed")
				} else if n > 0 {
					r.log.WithField("removed", n).Info("swept stale temp files")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
