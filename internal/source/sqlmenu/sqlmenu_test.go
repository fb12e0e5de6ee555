package sqlmenu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

func newTestSource(t *testing.T) *Source {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s, err := NewWithDB(db)
	require.NoError(t, err)
	return s
}

func strptr(s string) *string { return &s }

func TestLoadEmptyDatabase(t *testing.T) {
	s := newTestSource(t)
	tree, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tree.Root().Labels())
}

func TestLoadHierarchyAndOrder(t *testing.T) {
	s := newTestSource(t)
	require.NoError(t, s.db.Create([]MenuItem{
		{ID: "lessons", Title: "الدروس", OrderIndex: 1},
		{ID: "links", Title: "روابط", OrderIndex: 2},
		{ID: "level2", ParentID: strptr("lessons"), Title: "المستوى الثاني", OrderIndex: 2},
		{ID: "level1", ParentID: strptr("lessons"), Title: "المستوى الأول", OrderIndex: 1},
	}).Error)
	require.NoError(t, s.db.Create([]Content{
		{MenuItemID: "level1", Type: "audio", FileURL: "https://files.example.com/l1.mp3", Filename: "l1.mp3", Description: "الدرس الأول"},
	}).Error)
	require.NoError(t, s.db.Create([]MenuLink{
		{MenuItemID: "links", URL: "https://t.me/channel", Description: "قناة التلغرام"},
	}).Error)

	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, []string{"الدروس", "روابط"}, root.Labels())

	lessons, ok := root.Child("الدروس")
	require.True(t, ok)
	// siblings come back in order_index order, not insertion order
	assert.Equal(t, []string{"المستوى الأول", "المستوى الثاني"}, lessons.Labels())

	level1, ok := lessons.Child("المستوى الأول")
	require.True(t, ok)
	require.Len(t, level1.Files, 1)
	assert.Equal(t, menu.FileAudio, level1.Files[0].Type)
	assert.Equal(t, "https://files.example.com/l1.mp3", level1.Files[0].URL)
	assert.Equal(t, "الدرس الأول", level1.Files[0].Description)

	links, ok := root.Child("روابط")
	require.True(t, ok)
	require.Len(t, links.Links, 1)
	assert.Equal(t, "قناة التلغرام", links.Links[0].Label)
}

func TestLoadMixedContentAndChildren(t *testing.T) {
	s := newTestSource(t)
	require.NoError(t, s.db.Create([]MenuItem{
		{ID: "series", Title: "سلسلة", OrderIndex: 1},
		{ID: "part1", ParentID: strptr("series"), Title: "الجزء الأول", OrderIndex: 1},
	}).Error)
	require.NoError(t, s.db.Create([]Content{
		{MenuItemID: "series", FileURL: "https://files.example.com/intro.mp3"},
		{MenuItemID: "part1", FileURL: "https://files.example.com/part1.mp3"},
	}).Error)

	tree, err := s.Load(context.Background())
	require.NoError(t, err)

	series, ok := tree.Root().Child("سلسلة")
	require.True(t, ok)
	assert.True(t, series.HasContent())
	assert.True(t, series.HasChildren())
}

func TestLoadFreshTreeEachTime(t *testing.T) {
	s := newTestSource(t)
	require.NoError(t, s.db.Create(&MenuItem{ID: "a", Title: "أ", OrderIndex: 1}).Error)

	first, err := s.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.db.Create(&MenuItem{ID: "b", Title: "ب", OrderIndex: 2}).Error)

	second, err := s.Load(context.Background())
	require.NoError(t, err)

	// an already-published tree is never mutated by a later load
	assert.Equal(t, []string{"أ"}, first.Root().Labels())
	assert.Equal(t, []string{"أ", "ب"}, second.Root().Labels())
}
