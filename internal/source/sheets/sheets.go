// Package sheets loads the menu tree from a Google spreadsheet, one sheet
// per top-level section. Sheet names are listed through the Sheets API and
// each sheet's rows come from the public CSV export.
package sheets

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

const (
	defaultAPIBase    = "https://sheets.googleapis.com/v4/spreadsheets"
	defaultExportBase = "https://docs.google.com/spreadsheets/d"

	colParentFolder = "Parent_Folder"
	folderPrefix    = "Folder_"
	filePrefix      = "File_link_"
)

// audio/document extension hints used when classifying file cells.
var (
	audioExts = []string{".mp3", ".m4a", ".wav"}
	docExts   = []string{".pdf", ".doc", ".docx"}
)

// Source fetches and parses the spreadsheet.
type Source struct {
	spreadsheetID string
	apiKey        string
	client        *http.Client
	log           *logrus.Entry

	// overridable in tests
	apiBase    string
	exportBase string
}

// New creates a Source for the given spreadsheet. apiKey is required to list
// sheet names.
func New(spreadsheetID, apiKey string) *Source {
	return &Source{
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: 30 * time.Second},
		log:           logrus.WithField("component", "sheets"),
		apiBase:       defaultAPIBase,
		exportBase:    defaultExportBase,
	}
}

// Name identifies the backend in logs.
func (s *Source) Name() string {
	return "sheets"
}

// Load builds the whole tree, then prunes branches that ended up with neither
// content nor descendants. Any fetch or parse failure fails the load; nothing
// partial is ever returned.
func (s *Source) Load(ctx context.Context) (*menu.Tree, error) {
	titles, err := s.listSheets(ctx)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", s.spreadsheetID)
	}

	root := menu.NewNode()
	for _, title := range titles {
		rows, err := s.fetchSheet(ctx, title)
		if err != nil {
			return nil, err
		}
		section := menu.NewNode()
		if err := parseRows(rows, section); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", title, err)
		}
		root.AddChild(title, section)
	}

	return menu.New(root).Prune(), nil
}

// listSheets fetches the sheet titles through the Sheets API.
func (s *Source) listSheets(ctx context.Context) ([]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("missing Google API key")
	}
	u := fmt.Sprintf("%s/%s?fields=sheets.properties.title&key=%s", s.apiBase, s.spreadsheetID, url.QueryEscape(s.apiKey))

	body, err := s.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}

	var payload struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode sheet list: %w", err)
	}

	titles := make([]string, 0, len(payload.Sheets))
	for _, sh := range payload.Sheets {
		titles = append(titles, sh.Properties.Title)
	}
	s.log.WithField("sheets", titles).Debug("listed spreadsheet sheets")
	return titles, nil
}

// fetchSheet downloads one sheet as CSV rows.
func (s *Source) fetchSheet(ctx context.Context, title string) ([][]string, error) {
	u := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s", s.exportBase, s.spreadsheetID, url.QueryEscape(title))

	body, err := s.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet %q: %w", title, err)
	}

	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet %q csv: %w", title, err)
	}
	return rows, nil
}

func (s *Source) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseRows walks one sheet's rows into section. The header row names the
// columns: Parent_Folder gates row validity, Folder_N columns give the
// hierarchy and File_link_N columns carry the content cells.
func parseRows(rows [][]string, section *menu.Node) error {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	var parentIdx = -1
	var folderIdx, fileIdx []int
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == colParentFolder:
			parentIdx = i
		case strings.HasPrefix(name, folderPrefix):
			folderIdx = append(folderIdx, i)
		case strings.HasPrefix(name, filePrefix):
			fileIdx = append(fileIdx, i)
		}
	}
	if parentIdx < 0 {
		return fmt.Errorf("missing %s column", colParentFolder)
	}

	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		parent := strings.TrimSpace(cell(row, parentIdx))
		if parent == "" || strings.EqualFold(parent, "none") {
			continue
		}

		level := section
		for _, idx := range folderIdx {
			name := strings.TrimSpace(cell(row, idx))
			if skipFolderCell(name) {
				continue
			}
			level = level.EnsureChild(name)
		}

		for _, idx := range fileIdx {
			entry := strings.TrimSpace(cell(row, idx))
			if entry == "" {
				continue
			}
			addFileEntry(level, entry)
		}
	}
	return nil
}

// skipFolderCell treats "-", "none", "nan" and empty as "no further nesting
// at this level".
func skipFolderCell(name string) bool {
	switch strings.ToLower(name) {
	case "", "-", "none", "nan":
		return true
	}
	return false
}

// addFileEntry classifies one file cell onto node. A cell is either a bare
// URL or two lines "display name\nURL". Drive URLs and recognized document
// or audio extensions become files; anything else is an external link.
func addFileEntry(node *menu.Node, entry string) {
	if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
		if strings.Contains(entry, "drive.google.com") {
			name := driveFilename(entry)
			node.Files = append(node.Files, menu.FileRef{
				URL:      entry,
				Type:     extKind(name),
				Filename: name,
			})
			return
		}
		node.Links = append(node.Links, menu.LinkRef{URL: entry})
		return
	}

	lines := splitLines(entry)
	if len(lines) < 2 {
		return
	}
	name, u := lines[0], lines[1]
	kind := extKind(name)
	if kind == menu.FileUnspecified {
		kind = extKind(u)
	}
	if kind == menu.FileUnspecified {
		node.Links = append(node.Links, menu.LinkRef{URL: u, Label: name})
		return
	}
	node.Files = append(node.Files, menu.FileRef{URL: u, Type: kind, Filename: name})
}

// extKind maps a name or URL onto audio/document by extension hint, or
// unspecified when neither matches.
func extKind(s string) menu.FileType {
	lower := strings.ToLower(s)
	for _, ext := range audioExts {
		if strings.Contains(lower, ext) {
			return menu.FileAudio
		}
	}
	for _, ext := range docExts {
		if strings.Contains(lower, ext) {
			return menu.FileDocument
		}
	}
	return menu.FileUnspecified
}

// driveFilename extracts the last path segment of a drive URL, minus query.
func driveFilename(u string) string {
	clean := u
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		return clean[i+1:]
	}
	return clean
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
