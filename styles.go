package stylist

// Unique is the reserved key which, set to true within a declaration list,
// exempts the style at that nesting level from de-duplication.
const Unique = "$unique"

// KeyValue is a single entry of a normalized style tree level.
//
// Key is either a property name (camel-case or hyphen-case), a nested
// selector (combined with the parent by '&'-substitution or as a
// descendant), an at-rule (leading '@'), or the reserved tag Unique.
//
// Value is one of:
//   - string, int, int64, float32, float64, fmt.Stringer: a literal property
//     value; numeric values are unit-normalized (see package cssprop)
//   - nil: the declaration is dropped
//   - []interface{} of literals: one declaration per element, array order
//     preserved (intentional duplicates, e.g. a fallback background value
//     followed by a gradient)
//   - Styles: a nested subtree
//   - bool: only for the Unique tag
type KeyValue struct {
	Key   string
	Value interface{}
}

// Styles is one level of a normalized style tree: an ordered declaration
// list. Order is significant inside at-rule bodies and raw-rule
// registrations; everywhere else the registry sorts deterministically.
//
// Producing Styles values from author-facing style objects (shorthand
// expansion, vendor prefixing of property names) is the business of an input
// normalization layer on top of this package.
type Styles []KeyValue
