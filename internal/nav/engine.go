package nav

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/walaa-halaqat/halaqabot/internal/menu"
)

// StaleStateError reports a navigation path that no longer resolves against
// the current tree, typically after a reload removed a node. The engine
// absorbs it by resetting the session to the root.
type StaleStateError struct {
	UserID int64
	Path   []string
}

// Error returns the error message.
func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale navigation state for user %d: path %q no longer resolves", e.UserID, strings.Join(e.Path, "/"))
}

// Config controls the engine's reserved labels and render policy.
type Config struct {
	// BackLabel pops one level; at the root it is a no-op that still
	// re-renders the root.
	BackLabel string
	// MainMenuLabel resets to the root from any depth.
	MainMenuLabel string
	// SuppressRenderAfterDelivery skips the submenu re-render when the
	// press produced a content delivery. Observed bot revisions disagree
	// on this, so it is a policy knob rather than fixed behavior.
	SuppressRenderAfterDelivery bool
}

// Engine is the menu navigation state machine. It is invoked strictly
// per-event under the session lock and keeps no state of its own beyond
// configuration.
type Engine struct {
	cfg Config
	log *logrus.Entry
}

// NewEngine creates an engine with the given policy.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg: cfg,
		log: logrus.WithField("component", "nav"),
	}
}

// HandleEvent consumes one button press for the given session against the
// current tree and returns what the transport should do. The session path is
// mutated under its lock; per-user events are therefore serialized even if
// the transport dispatches them concurrently.
func (e *Engine) HandleEvent(sess *Session, tree *menu.Tree, label string) Directive {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch label {
	case e.cfg.MainMenuLabel:
		sess.reset()
		return Directive{Render: &Render{Node: tree.Root()}}

	case e.cfg.BackLabel:
		sess.pop()
		return Directive{Render: e.renderCurrent(sess, tree)}
	}

	current, ok := tree.Resolve(sess.path)
	if !ok {
		e.recoverStale(sess, label)
		return Directive{Render: &Render{Node: tree.Root()}}
	}

	next, ok := current.Child(label)
	if !ok {
		return Directive{
			Rejected: true,
			Render:   &Render{Node: current, Path: sess.snapshot()},
		}
	}

	var deliver *Delivery
	if next.HasContent() {
		deliver = &Delivery{Files: next.Files, Links: next.Links}
	}
	if next.HasChildren() {
		sess.push(label)
	}

	d := Directive{Deliver: deliver}
	if deliver == nil || !e.cfg.SuppressRenderAfterDelivery {
		d.Render = e.renderCurrent(sess, tree)
	}
	return d
}

// Reset unconditionally clears the session path.
func (e *Engine) Reset(sess *Session) {
	sess.mu.Lock()
	sess.reset()
	sess.mu.Unlock()
}

// renderCurrent resolves the session path, falling back to the root when the
// path went stale. Called with the session lock held.
func (e *Engine) renderCurrent(sess *Session, tree *menu.Tree) *Render {
	node, ok := tree.Resolve(sess.path)
	if !ok {
		e.recoverStale(sess, "")
		return &Render{Node: tree.Root()}
	}
	return &Render{Node: node, Path: sess.snapshot()}
}

// recoverStale logs the invariant breach and resets to the root. Called with
// the session lock held.
func (e *Engine) recoverStale(sess *Session, label string) {
	err := &StaleStateError{UserID: sess.UserID, Path: sess.snapshot()}
	e.log.WithFields(logrus.Fields{
		"user_id": sess.UserID,
		"path":    strings.Join(err.Path, "/"),
		"label":   label,
	}).Warn(err.Error())
	sess.reset()
}
