// Package sqlmenu loads the menu tree from a relational store using the
// menu_items / content / menu_links schema.
package sqlmenu

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// MenuItem is the GORM model for one menu entry.
type MenuItem struct {
	ID         string  `gorm:"primaryKey;column:id"`
	ParentID   *string `gorm:"column:parent_id;index:idx_parent"`
	Title      string  `gorm:"column:title;not null"`
	OrderIndex int     `gorm:"column:order_index;not null;default:0"`
}

// TableName specifies the table name for GORM.
func (MenuItem) TableName() string {
	return "menu_items"
}

// Content is the GORM model for a file attached to a menu entry.
type Content struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id"`
	MenuItemID  string `gorm:"column:menu_item_id;index:idx_content_item;not null"`
	Type        string `gorm:"column:type"`
	FileURL     string `gorm:"column:file_url;not null"`
	Description string `gorm:"column:description"`
	Filename    string `gorm:"column:filename"`
}

// TableName specifies the table name for GORM.
func (Content) TableName() string {
	return "content"
}

// MenuLink is the GORM model for an external link attached to a menu entry.
type MenuLink struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id"`
	MenuItemID  string `gorm:"column:menu_item_id;index:idx_link_item;not null"`
	URL         string `gorm:"column:url;not null"`
	Description string `gorm:"column:description"`
}

// TableName specifies the table name for GORM.
func (MenuLink) TableName() string {
	return "menu_links"
}

// Source loads the tree from a GORM database handle. The handle is injected
// at construction; there is no lazily built global client.
type Source struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string) (*Source, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing handle, migrating the schema. Tests inject an
// in-memory database here.
func NewWithDB(db *gorm.DB) (*Source, error) {
	if err := db.AutoMigrate(&MenuItem{}, &Content{}, &MenuLink{}); err != nil {
		return nil, fmt.Errorf("migrate menu schema: %w", err)
	}
	return &Source{db: db}, nil
}

// Name identifies the backend in logs.
func (s *Source) Name() string {
	return "sqlmenu"
}

// Load reads all rows and assembles the tree in memory, so a failed query
// fails the whole load and never publishes a partial tree.
func (s *Source) Load(ctx context.Context) (*menu.Tree, error) {
	var items []MenuItem
	if err := s.db.WithContext(ctx).Order("order_index").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	var contents []Content
	if err := s.db.WithContext(ctx).Find(&contents).Error; err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	var links []MenuLink
	if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load menu links: %w", err)
	}

	contentByItem := make(map[string][]Content)
	for _, c := range contents {
		contentByItem[c.MenuItemID] = append(contentByItem[c.MenuItemID], c)
	}
	linksByItem := make(map[string][]MenuLink)
	for _, l := range links {
		linksByItem[l.MenuItemID] = append(linksByItem[l.MenuItemID], l)
	}
	childrenByParent := make(map[string][]MenuItem)
	var roots []MenuItem
	for _, item := range items {
		if item.ParentID == nil || *item.ParentID == "" {
			roots = append(roots, item)
			continue
		}
		childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], item)
	}

	root := menu.NewNode()
	for _, item := range sortItems(roots) {
		root.AddChild(item.Title, buildNode(item, childrenByParent, contentByItem, linksByItem))
	}
	return menu.New(root), nil
}

func buildNode(item MenuItem, children map[string][]MenuItem, contents map[string][]Content, links map[string][]MenuLink) *menu.Node {
	node := menu.NewNode()
	for _, c := range contents[item.ID] {
		node.Files = append(node.Files, menu.FileRef{
			URL:         c.FileURL,
			Type:        menu.FileType(c.Type),
			Filename:    c.Filename,
			Description: c.Description,
		})
	}
	for _, l := range links[item.ID] {
		node.Links = append(node.Links, menu.LinkRef{URL: l.URL, Label: l.Description})
	}
	for _, child := range sortItems(children[item.ID]) {
		node.AddChild(child.Title, buildNode(child, children, contents, links))
	}
	return node
}

// sortItems orders siblings by order_index, keeping the query cheap while
// still producing a stable keyboard order.
func sortItems(items []MenuItem) []MenuItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items
}
