package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

func writeMenu(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadNestedMenu(t *testing.T) {
	doc := `{
		"الدروس": {
			"المستوى الأول": {
				"file_id": "https://files.example.com/lesson1.mp3",
				"type": "audio",
				"filename": "lesson1.mp3",
				"description": "الدرس الأول"
			},
			"المستوى الثاني": {
				"file_ids": [
					{"file_id": "https://files.example.com/a.pdf"},
					{"file_id": "https://files.example.com/b.pdf", "type": "document"}
				]
			}
		},
		"روابط": {
			"link": "https://example.com/site",
			"description": "الموقع"
		}
	}`
	s := New(writeMenu(t, doc))
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, []string{"الدروس", "روابط"}, root.Labels())

	lessons, ok := root.Child("الدروس")
	require.True(t, ok)
	assert.Equal(t, []string{"المستوى الأول", "المستوى الثاني"}, lessons.Labels())

	first, ok := lessons.Child("المستوى الأول")
	require.True(t, ok)
	require.Len(t, first.Files, 1)
	assert.Equal(t, "https://files.example.com/lesson1.mp3", first.Files[0].URL)
	assert.Equal(t, menu.FileAudio, first.Files[0].Type)
	assert.Equal(t, "lesson1.mp3", first.Files[0].Filename)
	assert.Equal(t, "الدرس الأول", first.Files[0].Description)

	second, ok := lessons.Child("المستوى الثاني")
	require.True(t, ok)
	require.Len(t, second.Files, 2)
	assert.Equal(t, menu.FileDocument, second.Files[1].Type)

	links, ok := root.Child("روابط")
	require.True(t, ok)
	require.Len(t, links.Links, 1)
	assert.Equal(t, "https://example.com/site", links.Links[0].URL)
	assert.Equal(t, "الموقع", links.Links[0].Label)
	assert.False(t, links.HasChildren())
}

func TestLoadMixedContentAndChildren(t *testing.T) {
	doc := `{
		"سلسلة": {
			"file_id": "https://files.example.com/intro.mp3",
			"الجزء الأول": {
				"file_id": "https://files.example.com/part1.mp3"
			}
		}
	}`
	s := New(writeMenu(t, doc))
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	series, ok := tree.Root().Child("سلسلة")
	require.True(t, ok)
	assert.True(t, series.HasContent())
	assert.True(t, series.HasChildren())
	_, ok = series.Child("الجزء الأول")
	assert.True(t, ok)
}

func TestLoadExternalLinks(t *testing.T) {
	doc := `{
		"مصادر": {
			"external_links": [
				{"name": "التلغرام", "url": "https://t.me/channel"},
				"https://example.com/bare"
			]
		}
	}`
	s := New(writeMenu(t, doc))
	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	res, ok := tree.Root().Child("مصادر")
	require.True(t, ok)
	require.Len(t, res.Links, 2)
	assert.Equal(t, "التلغرام", res.Links[0].Label)
	assert.Equal(t, "https://t.me/channel", res.Links[0].URL)
	assert.Equal(t, "https://example.com/bare", res.Links[1].URL)
}

func TestLoadBareStringEntryFails(t *testing.T) {
	s := New(writeMenu(t, `{"عنصر": "not an object"}`))
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "عنصر")
}

func TestLoadNotAnObjectFails(t *testing.T) {
	s := New(writeMenu(t, `[1, 2, 3]`))
	_, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"))
	_, err := s.Load(context.Background())
	require.Error(t, err)
}
