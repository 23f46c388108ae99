package cache

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// --- Mock items ------------------------------------------------------------

// leaf is an immutable item without children.
type leaf struct {
	id  string
	key string
	css string
}

func newLeaf(content string) leaf {
	return leaf{id: "l" + content, key: content, css: content + ";"}
}

func (l leaf) ID() string         { return l.id }
func (l leaf) ContentKey() string { return l.key }
func (l leaf) CSS() string        { return l.css }
func (l leaf) Clone() Item        { return l }

// box is a container item.
type box struct {
	id    string
	key   string
	inner *Cache
}

func newBox(content string) *box {
	return &box{id: "b" + content, key: content, inner: New()}
}

func (b *box) ID() string         { return b.id }
func (b *box) ContentKey() string { return b.key }
func (b *box) Registry() *Cache   { return b.inner }
func (b *box) CSS() string        { return b.key + "{" + b.inner.CSS() + "}" }

func (b *box) Clone() Item {
	return &box{id: b.id, key: b.key, inner: b.inner.Clone()}
}

// --- Add / Remove ----------------------------------------------------------

func TestCacheAddStoresClone(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b := newBox("x")
	require.NoError(t, b.inner.Add(newLeaf("a")))
	require.NoError(t, c.Add(b))
	// mutating the original must not affect the stored clone
	require.NoError(t, b.inner.Add(newLeaf("late")))
	stored, ok := c.Get(b.ID())
	require.True(t, ok)
	require.Equal(t, "x{a;}", stored.CSS())
}

func TestCacheAddCountsReferences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	l := newLeaf("a")
	require.NoError(t, c.Add(l))
	require.NoError(t, c.Add(l))
	require.Equal(t, 1, c.Len(), "expected a single stored entry")
	require.Equal(t, 2, c.Count(l.ID()))
	require.NoError(t, c.Remove(l))
	require.Equal(t, 1, c.Len(), "entry must survive first removal")
	require.NoError(t, c.Remove(l))
	require.Equal(t, 0, c.Len(), "entry must disappear at count zero")
}

func TestCacheRemoveStoredAggregate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b := newBox("x")
	require.NoError(t, b.inner.Add(newLeaf("a")))
	require.NoError(t, b.inner.Add(newLeaf("b")))
	require.NoError(t, b.inner.Add(newLeaf("c")))
	require.NoError(t, c.Add(b))
	require.NoError(t, c.Add(b))

	// removing the stored item itself drops a reference, nothing else:
	// the aggregate pools every contribution, none can be singled out
	stored := c.Values()[0]
	require.NoError(t, c.Remove(stored))
	require.Equal(t, 1, c.Count(b.ID()))
	require.Equal(t, "x{a;b;c;}", c.CSS(), "children must survive a count-only removal")
	require.NoError(t, c.Remove(stored))
	require.Equal(t, 0, c.Len())
}

func TestCacheRemovePrevalidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b := newBox("x")
	require.NoError(t, b.inner.Add(newLeaf("a")))
	require.NoError(t, c.Add(b))
	require.NoError(t, c.Add(b))

	// incoming carries a child the stored box never held
	stray := newBox("x")
	require.NoError(t, stray.inner.Add(newLeaf("a")))
	require.NoError(t, stray.inner.Add(newLeaf("z")))
	err := c.Remove(stray)
	require.ErrorIs(t, err, ErrUnknownItem)
	require.Equal(t, 2, c.Count(b.ID()), "failed remove must not decrement")
	require.Equal(t, "x{a;}", c.CSS(), "no partial unmerge may remain")
	stored := c.Values()[0].(Container)
	require.Equal(t, 2, stored.Registry().Count("la"), "nested counts must stay untouched")
}

func TestCacheRemoveUnknown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	err := c.Remove(newLeaf("never"))
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestCacheSerializationOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	for _, content := range []string{"c", "a", "b"} {
		require.NoError(t, c.Add(newLeaf(content)))
	}
	require.Equal(t, "c;a;b;", c.CSS(), "serialization must follow insertion order")
}

// --- Collision detection ---------------------------------------------------

func TestCacheCollision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	require.NoError(t, c.Add(leaf{id: "l1", key: "one", css: "one;"}))
	before := c.ChangeID()
	err := c.Add(leaf{id: "l1", key: "two", css: "two;"})
	require.ErrorIs(t, err, ErrContentCollision)
	require.Equal(t, before, c.ChangeID(), "failed add must not mutate")
	require.Equal(t, 1, c.Count("l1"))
}

func TestCacheNestedCollisionCheckedBeforeMerge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b1 := newBox("x")
	require.NoError(t, b1.inner.Add(leaf{id: "l1", key: "one", css: "one;"}))
	require.NoError(t, c.Add(b1))

	b2 := newBox("x")
	require.NoError(t, b2.inner.Add(leaf{id: "l1", key: "two", css: "two;"}))
	require.NoError(t, b2.inner.Add(newLeaf("extra")))
	err := c.Add(b2)
	require.ErrorIs(t, err, ErrContentCollision)
	require.Equal(t, 1, c.Count(b1.ID()), "count must stay untouched on error")
	require.Equal(t, "x{one;}", c.CSS(), "no partial merge may remain")
}

// --- Recursive merge -------------------------------------------------------

func TestCacheMergeRecurses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b1 := newBox("x")
	require.NoError(t, b1.inner.Add(newLeaf("a")))
	require.NoError(t, c.Add(b1))

	b2 := newBox("x")
	require.NoError(t, b2.inner.Add(newLeaf("b")))
	before := c.ChangeID()
	require.NoError(t, c.Add(b2))
	require.Equal(t, 1, c.Len())
	require.Equal(t, "x{a;b;}", c.CSS(), "children must merge one level deeper")
	require.Greater(t, c.ChangeID(), before, "nested change must bump changeID")
}

func TestCacheMergeUnmergeRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	a := New()
	require.NoError(t, a.Add(newLeaf("mine")))
	box := newBox("x")
	require.NoError(t, box.inner.Add(newLeaf("nested")))
	require.NoError(t, a.Add(box))
	want := a.CSS()

	b := New()
	require.NoError(t, b.Add(newLeaf("yours")))
	other := newBox("x")
	require.NoError(t, other.inner.Add(newLeaf("deep")))
	require.NoError(t, b.Add(other))

	require.NoError(t, a.Merge(b))
	require.NotEqual(t, want, a.CSS())
	require.NoError(t, a.Unmerge(b))
	require.Equal(t, want, a.CSS(), "unmerge must restore the pre-merge serialization")
}

func TestCacheMergeUnmergeProperty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	rapid.Check(t, func(t *rapid.T) {
		contents := rapid.SliceOfN(rapid.StringMatching(`[a-f]{1,3}`), 0, 8)
		a := New()
		for _, content := range contents.Draw(t, "a") {
			require.NoError(t, a.Add(newLeaf(content)))
		}
		b := New()
		for _, content := range contents.Draw(t, "b") {
			require.NoError(t, b.Add(newLeaf(content)))
		}
		want := a.CSS()
		require.NoError(t, a.Merge(b))
		require.NoError(t, a.Unmerge(b))
		require.Equal(t, want, a.CSS())
	})
}

// --- Change notification ---------------------------------------------------

func TestCacheEvents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	var log []string
	c := New()
	c.SetListener(func(e Event) {
		log = append(log, fmt.Sprintf("%s(%s@%d)", e.Kind, e.Item.ID(), e.Index))
	})
	l := newLeaf("a")
	require.NoError(t, c.Add(l))
	require.NoError(t, c.Add(l)) // count bump only, no event
	b1 := newBox("x")
	require.NoError(t, b1.inner.Add(newLeaf("n")))
	require.NoError(t, c.Add(b1))
	b2 := newBox("x")
	require.NoError(t, b2.inner.Add(newLeaf("m")))
	require.NoError(t, c.Add(b2)) // nested merge: Changed
	require.NoError(t, c.Remove(l))
	require.NoError(t, c.Remove(l))

	require.Equal(t, []string{
		"Added(la@0)",
		"Added(bx@1)",
		"Changed(bx@1)",
		"Removed(la@0)",
	}, log)
}

// --- Clone -----------------------------------------------------------------

func TestCacheCloneIsIndependent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.cache")
	defer teardown()
	//
	c := New()
	b := newBox("x")
	require.NoError(t, b.inner.Add(newLeaf("a")))
	require.NoError(t, c.Add(b))
	clone := c.Clone()

	require.NoError(t, c.Add(newLeaf("later")))
	require.Equal(t, 1, clone.Len())
	stored, _ := clone.Get(b.ID())
	inner := stored.(Container).Registry()
	require.NoError(t, inner.Add(newLeaf("own")))
	original, _ := c.Get(b.ID())
	require.Equal(t, "x{a;}", original.CSS(), "clone mutation must not leak back")
}
