package menu

// FileType classifies how a downloaded file should be sent to the user.
type FileType string

const (
	FileAudio       FileType = "audio"
	FileDocument    FileType = "document"
	FileUnspecified FileType = ""
)

// FileRef points at a downloadable file attached to a menu node. URL may be a
// direct link or a share link that needs rewriting before fetching.
type FileRef struct {
	URL         string
	Type        FileType
	Filename    string
	Description string
}

// LinkRef is an external link attached to a menu node. No download involved.
type LinkRef struct {
	URL   string
	Label string
}

// Node is a single menu entry. Children and content are independent facets:
// a node may carry both submenu entries and deliverable files/links, only one
// of them, or neither (sources prune the last case before publishing a tree).
type Node struct {
	labels   []string
	children map[string]*Node

	Files []FileRef
	Links []LinkRef
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

// AddChild attaches child under label. Adding a label that already exists
// replaces the previous child without changing its position.
func (n *Node) AddChild(label string, child *Node) {
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	if _, ok := n.children[label]; !ok {
		n.labels = append(n.labels, label)
	}
	n.children[label] = child
}

// EnsureChild returns the child under label, creating an empty one if needed.
// Used by sources that build the tree row by row.
func (n *Node) EnsureChild(label string) *Node {
	if child, ok := n.Child(label); ok {
		return child
	}
	child := NewNode()
	n.AddChild(label, child)
	return child
}

// Child looks up a direct child by label.
func (n *Node) Child(label string) (*Node, bool) {
	if n.children == nil {
		return nil, false
	}
	child, ok := n.children[label]
	return child, ok
}

// Labels returns the child labels in insertion order.
func (n *Node) Labels() []string {
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// removeChild drops a direct child. Used by Prune.
func (n *Node) removeChild(label string) {
	if _, ok := n.children[label]; !ok {
		return
	}
	delete(n.children, label)
	for i, l := range n.labels {
		if l == label {
			n.labels = append(n.labels[:i], n.labels[i+1:]...)
			break
		}
	}
}

// HasChildren reports whether the node has submenu entries.
func (n *Node) HasChildren() bool {
	return len(n.labels) > 0
}

// HasContent reports whether the node carries deliverable files or links.
func (n *Node) HasContent() bool {
	return len(n.Files) > 0 || len(n.Links) > 0
}
