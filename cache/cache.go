package cache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContentCollision is thrown if two items share an identifier but differ
// in content. This signals a weakness of the hash function (or a bug in an
// item implementation) and is never resolved silently.
var ErrContentCollision = errors.New("identifier collision between items of differing content")

// ErrUnknownItem is thrown if an item is removed from a cache which never
// held it.
var ErrUnknownItem = errors.New("item is not present in cache")

// Item is the capability set of anything a cache can hold: a stable
// content-derived identifier, a finer-grained content signature for
// collision checks, deep copying, and serialization to CSS text.
type Item interface {
	ID() string         // stable content hash, computed at construction
	ContentKey() string // exact content the identifier was derived from
	Clone() Item        // independent deep copy, identical identifier
	CSS() string        // serialized text, including current children
}

// Container is implemented by items which themselves hold a cache of
// children. Add and Remove recurse through it.
type Container interface {
	Item
	Registry() *Cache // the nested cache of children
}

// Cache is an ordered mapping from item identifiers to items, together with
// a reference count per entry. The zero value is not usable; create
// instances with New.
type Cache struct {
	order    []string
	items    map[string]Item
	counts   map[string]int
	changeID uint64
	listener Listener
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		items:  make(map[string]Item),
		counts: make(map[string]int),
	}
}

// SetListener installs a change listener. A nil listener (the default)
// discards all notifications.
func (c *Cache) SetListener(l Listener) {
	c.listener = l
}

// ChangeID returns the current value of the change counter. It is bumped on
// every structural mutation: an item stored for the first time, an item
// fully removed, or a nested cache changed by a recursive merge or unmerge.
func (c *Cache) ChangeID() uint64 {
	return c.changeID
}

// Len returns the number of items currently stored.
func (c *Cache) Len() int {
	return len(c.order)
}

// Count returns the reference count for an identifier, 0 if not present.
func (c *Cache) Count(id string) int {
	return c.counts[id]
}

// Get returns the stored item for an identifier.
func (c *Cache) Get(id string) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Values returns the currently stored items in insertion order.
func (c *Cache) Values() []Item {
	values := make([]Item, len(c.order))
	for i, id := range c.order {
		values[i] = c.items[id]
	}
	return values
}

// index returns the position of id in insertion order, or -1.
func (c *Cache) index(id string) int {
	for i, k := range c.order {
		if k == id {
			return i
		}
	}
	return -1
}

// Add inserts an item into the cache, or bumps its reference count if an
// item with the same identifier is already stored. The cache stores a clone;
// the argument stays untouched and in the caller's ownership.
//
// If the stored and the incoming item are both containers, the incoming
// item's children are merged recursively into the stored one.
//
// Add is all-or-nothing: on error (a content collision at any depth) the
// cache is left exactly as it was.
func (c *Cache) Add(item Item) error {
	id := item.ID()
	if c.counts[id] == 0 {
		stored := item.Clone()
		c.order = append(c.order, id)
		c.items[id] = stored
		c.counts[id] = 1
		c.changeID++
		tracer().Debugf("cache: add new item %s at %d", id, len(c.order)-1)
		c.notify(Event{Kind: Added, Item: stored, Index: len(c.order) - 1})
		return nil
	}
	existing := c.items[id]
	if existing.ContentKey() != item.ContentKey() {
		return fmt.Errorf("cache: id %q held for %q, incoming %q: %w",
			id, existing.ContentKey(), item.ContentKey(), ErrContentCollision)
	}
	if sub, ok := existing.(Container); ok {
		if incoming, ok := item.(Container); ok {
			reg := sub.Registry()
			if err := reg.checkMerge(incoming.Registry()); err != nil {
				return err
			}
			before := reg.ChangeID()
			reg.mergeChecked(incoming.Registry())
			if reg.ChangeID() != before {
				c.changeID++
				index := c.index(id)
				c.notify(Event{Kind: Changed, Item: existing, Index: index, OldIndex: index})
			}
		}
	}
	c.counts[id]++
	return nil
}

// Remove decrements the reference count for an item. A count of zero deletes
// the entry; a count still positive recursively unmerges the incoming item's
// children from the stored one, where both are containers.
//
// Passing the stored item itself (as handed out by Values or Get) decrements
// the count only: the stored aggregate pools the children of every reference
// ever added, so no particular contribution can be singled out for unmerging.
//
// Remove is all-or-nothing: on error (an item unknown at any depth) the cache
// is left exactly as it was.
func (c *Cache) Remove(item Item) error {
	if err := c.checkRemove(item); err != nil {
		return err
	}
	c.removeChecked(item)
	return nil
}

// Merge adds every item of another cache, in that cache's order, to this
// one. Merging recurses into nested caches; it is all-or-nothing with
// respect to collision errors.
func (c *Cache) Merge(other *Cache) error {
	if err := c.checkMerge(other); err != nil {
		return err
	}
	c.mergeChecked(other)
	return nil
}

// Unmerge removes every item of another cache, in that cache's order, from
// this one. It is the inverse of a preceding Merge of the same content and,
// like Merge, all-or-nothing with respect to errors.
func (c *Cache) Unmerge(other *Cache) error {
	if err := c.checkUnmerge(other); err != nil {
		return err
	}
	c.unmergeChecked(other)
	return nil
}

// checkRemove verifies, without mutating, that removing item from c cannot
// hit an unknown entry at any depth.
func (c *Cache) checkRemove(item Item) error {
	id := item.ID()
	if c.counts[id] == 0 {
		return fmt.Errorf("cache: remove %q: %w", id, ErrUnknownItem)
	}
	if c.counts[id] == 1 {
		return nil // the entry disappears wholesale, nested content with it
	}
	sub, ok := c.items[id].(Container)
	if !ok {
		return nil
	}
	incoming, ok := item.(Container)
	if !ok {
		return nil
	}
	if incoming.Registry() == sub.Registry() {
		return nil // the stored aggregate itself: count-only removal
	}
	return sub.Registry().checkUnmerge(incoming.Registry())
}

// removeChecked performs the removal after checkRemove has passed.
func (c *Cache) removeChecked(item Item) {
	id := item.ID()
	c.counts[id]--
	if c.counts[id] == 0 {
		stored := c.items[id]
		index := c.index(id)
		c.order = append(c.order[:index], c.order[index+1:]...)
		delete(c.items, id)
		delete(c.counts, id)
		c.changeID++
		tracer().Debugf("cache: remove item %s from %d", id, index)
		c.notify(Event{Kind: Removed, Item: stored, Index: index})
		return
	}
	existing := c.items[id]
	sub, ok := existing.(Container)
	if !ok {
		return
	}
	incoming, ok := item.(Container)
	if !ok {
		return
	}
	reg := sub.Registry()
	if incoming.Registry() == reg {
		return
	}
	before := reg.ChangeID()
	reg.unmergeChecked(incoming.Registry())
	if reg.ChangeID() != before {
		index := c.index(id)
		c.changeID++
		c.notify(Event{Kind: Changed, Item: existing, Index: index, OldIndex: index})
	}
}

// checkUnmerge verifies, without mutating, that unmerging other from c cannot
// hit an unknown entry at any depth.
func (c *Cache) checkUnmerge(other *Cache) error {
	for _, id := range other.order {
		if err := c.checkRemove(other.items[id]); err != nil {
			return err
		}
	}
	return nil
}

// unmergeChecked performs the unmerge after checkUnmerge has passed. It walks
// a snapshot of the other cache: other may alias a cache this very unmerge
// mutates, for instance when a caller removes a stored item through a cache
// it obtained from Values.
func (c *Cache) unmergeChecked(other *Cache) {
	ids := append([]string(nil), other.order...)
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = other.items[id]
	}
	for _, item := range items {
		c.removeChecked(item)
	}
}

// checkMerge verifies, without mutating, that merging other into c cannot
// produce a content collision at any depth.
func (c *Cache) checkMerge(other *Cache) error {
	for _, id := range other.order {
		existing, ok := c.items[id]
		if !ok {
			continue
		}
		incoming := other.items[id]
		if existing.ContentKey() != incoming.ContentKey() {
			return fmt.Errorf("cache: id %q held for %q, incoming %q: %w",
				id, existing.ContentKey(), incoming.ContentKey(), ErrContentCollision)
		}
		sub, ok := existing.(Container)
		if !ok {
			continue
		}
		in, ok := incoming.(Container)
		if !ok {
			continue
		}
		if err := sub.Registry().checkMerge(in.Registry()); err != nil {
			return err
		}
	}
	return nil
}

// mergeChecked performs the merge after checkMerge has passed.
func (c *Cache) mergeChecked(other *Cache) {
	for _, id := range other.order {
		if err := c.Add(other.items[id]); err != nil {
			panic(fmt.Sprintf("cache: checked merge failed: %v", err))
		}
	}
}

// Clone produces a deep copy of the cache: every item is cloned, reference
// counts are preserved. The listener is not carried over.
func (c *Cache) Clone() *Cache {
	clone := New()
	clone.order = append(clone.order, c.order...)
	for id, item := range c.items {
		clone.items[id] = item.Clone()
	}
	for id, count := range c.counts {
		clone.counts[id] = count
	}
	return clone
}

// CSS concatenates the serialized text of all stored items, in insertion
// order and with no separator: every item brackets its own text.
func (c *Cache) CSS() string {
	var b strings.Builder
	for _, id := range c.order {
		b.WriteString(c.items[id].CSS())
	}
	return b.String()
}

func (c *Cache) notify(e Event) {
	if c.listener != nil {
		c.listener(e)
	}
}
