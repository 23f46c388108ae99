package cache

// EventKind discriminates cache change notifications.
type EventKind int

const (
	Added   EventKind = iota // item stored for the first time
	Changed                  // nested cache of a stored entry changed
	Removed                  // reference count dropped to zero
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	case Removed:
		return "Removed"
	}
	return "<unknown event kind>"
}

// Event describes a single structural mutation of a cache.
//
// For Added and Removed, Index is the item's position in insertion order at
// the moment of the mutation. For Changed, Index and OldIndex carry the
// current and previous position; merging never reorders, so today the two
// are always equal.
type Event struct {
	Kind     EventKind
	Item     Item
	Index    int
	OldIndex int
}

// Listener receives change events, synchronously and in-line with the
// mutation that produced them. A listener observes a fully consistent cache;
// errors a listener panics with propagate to the caller of the mutating
// operation.
type Listener func(Event)
