package nav

import "github.com/walaa-halaqat/halaqabot/internal/menu"

// Render tells the transport which submenu to draw.
type Render struct {
	// Node is the submenu to render; keyboard labels come from Node.Labels().
	Node *menu.Node
	// Path locates Node in the tree. Empty means root; the last segment is
	// the menu title.
	Path []string
}

// AtRoot reports whether the render targets the root menu.
func (r *Render) AtRoot() bool {
	return len(r.Path) == 0
}

// Title returns the label naming the rendered menu, empty at root.
func (r *Render) Title() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// Delivery tells the transport which content to fetch and forward. Files and
// links are attempted independently of menu rendering and of each other.
type Delivery struct {
	Files []menu.FileRef
	Links []menu.LinkRef
}

// Directive is the engine's answer to one button press. Deliver and Render
// are orthogonal: a press may deliver content, render a submenu, or both.
// Rejected marks a label that is not present at the current level; the
// accompanying Render re-draws the unchanged current menu.
type Directive struct {
	Deliver  *Delivery
	Render   *Render
	Rejected bool
}
