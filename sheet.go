package stylist

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/npillmayer/stylist/cache"
	"github.com/npillmayer/stylist/cssprop"
)

// ErrNotAttached is thrown if a sheet is detached from a child it was never
// attached to.
var ErrNotAttached = errors.New("sheet is not attached")

// Sheet is the root cache of a stylesheet: it holds rule and style nodes,
// owns the global change counter, and exposes the registration API. Sheets
// are the unit applications create, merge and clone.
//
// A sheet is driven by one logical owner; it is not safe for concurrent use
// without external locking. All operations run synchronously to completion.
type Sheet struct {
	registry *cache.Cache
	id       string
	debug    bool
	table    *cssprop.Table
	parents  []*Sheet // sheets kept in sync through Attach
}

// Option configures a sheet at creation time.
type Option func(*Sheet)

// WithListener installs a change listener on the sheet's cache. Events are
// delivered synchronously, in-line with the mutation that produced them.
func WithListener(l cache.Listener) Option {
	return func(s *Sheet) { s.registry.SetListener(l) }
}

// WithDebug lets registration calls prepend a supplied display name to the
// generated identifier, for readable class names during development.
func WithDebug(on bool) Option {
	return func(s *Sheet) { s.debug = on }
}

// WithTable replaces the default unit-less-property table.
func WithTable(t *cssprop.Table) Option {
	return func(s *Sheet) { s.table = t }
}

// New creates an empty sheet. Every sheet receives a fresh, process-wide
// unique instance identifier: two sheets with identical registered content
// remain distinct instances until explicitly merged.
func New(opts ...Option) *Sheet {
	s := &Sheet{
		registry: cache.New(),
		id:       "t" + strconv.FormatUint(nextInstance(), 10),
	}
	for _, opt := range opts {
		opt(s)
	}
	tracer().Debugf("sheet %s created", s.id)
	return s
}

// ID returns the sheet's instance identifier.
func (s *Sheet) ID() string {
	return s.id
}

// Registry exposes the sheet's node cache. Mutating it directly bypasses
// the attach replay; most clients only read from it.
func (s *Sheet) Registry() *cache.Cache {
	return s.registry
}

// ChangeID returns the sheet's global change counter.
func (s *Sheet) ChangeID() uint64 {
	return s.registry.ChangeID()
}

// CSS returns the full current stylesheet text: the concatenation of every
// top-level node's serialization, in insertion order.
func (s *Sheet) CSS() string {
	return s.registry.CSS()
}

// RegisterStyle registers a style tree and returns the generated class
// name. Registering semantically identical content any number of times
// returns the same name and stores the underlying nodes once.
//
// An optional display name is prepended to the class name on sheets created
// with WithDebug(true).
func (s *Sheet) RegisterStyle(styles Styles, displayName ...string) (string, error) {
	c := &compiler{table: s.table}
	root, pid, err := c.compileStyle(styles)
	if err != nil {
		return "", err
	}
	name := s.visibleName(pid, displayName)
	items, err := materialize(root, name)
	if err != nil {
		return "", err
	}
	if err := s.insert(items); err != nil {
		return "", err
	}
	tracer().Debugf("sheet %s: registered style %s", s.id, name)
	return name, nil
}

// RegisterKeyframes registers a keyframes body and returns the generated
// animation name. Frame keys (from/to/percentages) are literal, never
// class-relative, and keep their authored order.
func (s *Sheet) RegisterKeyframes(styles Styles, displayName ...string) (string, error) {
	return s.RegisterHashRule("@keyframes", styles, displayName...)
}

// RegisterHashRule registers a content-hashed at-rule: the body is wrapped
// in "<prefix> <name>" where name is derived from the body's content, and
// the name is returned.
func (s *Sheet) RegisterHashRule(prefix string, styles Styles, displayName ...string) (string, error) {
	c := &compiler{table: s.table}
	root, pid, err := c.compileHashRule(prefix, styles)
	if err != nil {
		return "", err
	}
	name := s.visibleName(pid, displayName)
	items, err := materialize(root, name)
	if err != nil {
		return "", err
	}
	if err := s.insert(items); err != nil {
		return "", err
	}
	tracer().Debugf("sheet %s: registered hash rule %s %s", s.id, prefix, name)
	return name, nil
}

// RegisterRule registers a literal selector or at-rule verbatim, with no
// hashing and no generated identifier — for global rules such as
// "body {...}" or "@font-face {...}". Key order is preserved throughout.
func (s *Sheet) RegisterRule(selector string, styles Styles) error {
	c := &compiler{table: s.table}
	root, err := c.compileRule(selector, styles)
	if err != nil {
		return err
	}
	items, err := materialize(root, "")
	if err != nil {
		return err
	}
	return s.insert(items)
}

// RegisterCSS batch-registers multiple independent top-level rules in one
// call: sugar for RegisterRule with an empty root selector.
func (s *Sheet) RegisterCSS(styles Styles) error {
	return s.RegisterRule("", styles)
}

// Merge composes another sheet's content into this one, by value: nodes are
// cloned on insertion and reference-counted, recursively through nested
// rules. Without an Attach relationship a merge is a point-in-time snapshot
// of the other sheet.
func (s *Sheet) Merge(other *Sheet) error {
	if err := s.registry.Merge(other.registry); err != nil {
		return err
	}
	for _, parent := range s.parents {
		if err := parent.Merge(other); err != nil {
			return err
		}
	}
	return nil
}

// Unmerge removes another sheet's content from this one; it is the inverse
// of a preceding Merge of the same content.
func (s *Sheet) Unmerge(other *Sheet) error {
	if err := s.registry.Unmerge(other.registry); err != nil {
		return err
	}
	for _, parent := range s.parents {
		if err := parent.Unmerge(other); err != nil {
			return err
		}
	}
	return nil
}

// Clone produces an independent deep copy with the same content and a fresh
// instance identifier. Listeners and attach relationships are not carried
// over.
func (s *Sheet) Clone() *Sheet {
	return &Sheet{
		registry: s.registry.Clone(),
		id:       "t" + strconv.FormatUint(nextInstance(), 10),
		debug:    s.debug,
		table:    s.table,
	}
}

// Attach merges the current content of child into s and keeps s in sync:
// every subsequent successful mutating operation on child is replayed
// against s (transitively, if s is itself attached elsewhere). Attachment
// cycles are the caller's responsibility.
//
// A failed replay (a collision in a parent) does not undo the child's own
// change: the operation returns the parent's error, and the two sheets
// diverge until the relationship is detached and re-established. Sheets
// attached to a common parent should therefore not register colliding
// content.
func (s *Sheet) Attach(child *Sheet) error {
	if err := s.registry.Merge(child.registry); err != nil {
		return err
	}
	child.parents = append(child.parents, s)
	tracer().Debugf("sheet %s attached to %s", child.id, s.id)
	return nil
}

// Detach severs an Attach relationship and unmerges the child's current
// content from s.
func (s *Sheet) Detach(child *Sheet) error {
	for i, parent := range child.parents {
		if parent == s {
			child.parents = append(child.parents[:i], child.parents[i+1:]...)
			return s.registry.Unmerge(child.registry)
		}
	}
	return fmt.Errorf("stylist: sheet %s to sheet %s: %w", s.id, child.id, ErrNotAttached)
}

// visibleName derives the externally visible identifier from a traversal
// fingerprint.
func (s *Sheet) visibleName(pid string, displayName []string) string {
	name := "f" + stringHash(pid)
	if s.debug && len(displayName) > 0 && displayName[0] != "" {
		name = displayName[0] + "_" + name
	}
	return name
}

// insert adds materialized nodes to the sheet, all-or-nothing: on error the
// already inserted nodes are taken out again and the sheet is left exactly
// as it was. Successful insertions are replayed against attached parents.
func (s *Sheet) insert(items []cache.Item) error {
	for i, item := range items {
		if err := s.registry.Add(item); err != nil {
			for j := i - 1; j >= 0; j-- {
				// inverse of an Add that succeeded; cannot fail
				_ = s.registry.Remove(items[j])
			}
			return err
		}
	}
	for _, parent := range s.parents {
		if err := parent.insert(items); err != nil {
			return err
		}
	}
	return nil
}
