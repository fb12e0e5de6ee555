// Package jsonfile loads the menu tree from a flat nested JSON document.
// Object keys are labels; a value that is itself an object is a submenu; the
// keys file_id/file_ids and link/links/external_links mark content. A node
// may mix content and submenu entries.
package jsonfile

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// Keys with structural meaning; everything else that maps to an object is a
// submenu entry.
const (
	keyFileID      = "file_id"
	keyFileIDs     = "file_ids"
	keyLink        = "link"
	keyLinks       = "links"
	keyExtLinks    = "external_links"
	keyType        = "type"
	keyFilename    = "filename"
	keyDescription = "description"
)

// Source reads the menu document from a file path on every load.
type Source struct {
	path string
}

// New creates a Source for the given file.
func New(path string) *Source {
	return &Source{path: path}
}

// Name identifies the backend in logs.
func (s *Source) Name() string {
	return "jsonfile"
}

// Load parses the document into a fresh tree. The whole file is read and
// parsed before anything is published, so a malformed document fails the
// load atomically.
func (s *Source) Load(ctx context.Context) (*menu.Tree, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("menu file %s: top level is not an object", s.path)
	}

	root := menu.NewNode()
	if err := parseNode(doc, root); err != nil {
		return nil, err
	}
	return menu.New(root), nil
}

// parseNode fills node from one JSON object, recursing into submenus.
// gjson preserves document order, which becomes the keyboard order.
func parseNode(obj gjson.Result, node *menu.Node) error {
	var walkErr error

	desc := obj.Get(keyDescription).String()

	obj.ForEach(func(key, value gjson.Result) bool {
		label := key.String()
		switch label {
		case keyFileID:
			node.Files = append(node.Files, menu.FileRef{
				URL:         value.String(),
				Type:        menu.FileType(obj.Get(keyType).String()),
				Filename:    obj.Get(keyFilename).String(),
				Description: desc,
			})
		case keyFileIDs:
			value.ForEach(func(_, entry gjson.Result) bool {
				url := entry.Get(keyFileID).String()
				if url == "" {
					url = entry.String()
				}
				node.Files = append(node.Files, menu.FileRef{
					URL:      url,
					Type:     menu.FileType(entry.Get(keyType).String()),
					Filename: entry.Get(keyFilename).String(),
				})
				return true
			})
		case keyLink:
			node.Links = append(node.Links, menu.LinkRef{URL: value.String(), Label: desc})
		case keyLinks, keyExtLinks:
			value.ForEach(func(_, entry gjson.Result) bool {
				url := entry.Get("url").String()
				if url == "" {
					url = entry.String()
				}
				node.Links = append(node.Links, menu.LinkRef{
					URL:   url,
					Label: entry.Get("name").String(),
				})
				return true
			})
		case keyType, keyFilename, keyDescription:
			// metadata consumed alongside file_id/link
		default:
			if !value.IsObject() {
				walkErr = fmt.Errorf("menu entry %q: expected object, got %s", label, value.Type)
				return false
			}
			child := menu.NewNode()
			if err := parseNode(value, child); err != nil {
				walkErr = err
				return false
			}
			node.AddChild(label, child)
		}
		return true
	})

	return walkErr
}
