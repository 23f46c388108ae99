package stylist

import (
	"strconv"
	"strings"

	"github.com/npillmayer/stylist/cache"
)

// The node kinds a sheet is composed of. All of them implement cache.Item;
// Style and Rule additionally implement cache.Container. Identifiers are
// namespaced by a kind prefix ('k', 's', 'r') so that nodes of different
// kinds can never collide.

// keySep separates the fields of a content key. NUL cannot occur in
// selector, property or header text.
const keySep = "\x00"

// --- Selector --------------------------------------------------------------

// Selector is a leaf node wrapping a single CSS selector. It is immutable
// after construction.
type Selector struct {
	text string
	id   string
}

// NewSelector wraps a selector string.
func NewSelector(text string) *Selector {
	return &Selector{text: text, id: "k" + stringHash(text)}
}

func (s *Selector) ID() string         { return s.id }
func (s *Selector) ContentKey() string { return s.text }
func (s *Selector) CSS() string        { return s.text }

// Clone returns an independent copy.
func (s *Selector) Clone() cache.Item {
	copied := *s
	return &copied
}

// --- Style -----------------------------------------------------------------

// Style is a cache of selectors plus a literal property string. It
// serializes as "<comma-joined selectors>{<properties>}", or to nothing at
// all when the property string is empty.
//
// A style's identity is derived from its property text and its structural
// origin — the selector template before class-name substitution. Styles with
// the same properties at the same structural position therefore merge even
// when their concrete class names differ, pooling their selectors into one
// comma-joined rule. The unique tag bypasses this: a unique style's
// identifier incorporates a fresh process-wide counter and never merges.
type Style struct {
	selectors *cache.Cache // of *Selector
	template  string
	props     string
	id        string
}

// NewStyle creates a style node for a property string originating at the
// given selector template.
func NewStyle(template, props string) *Style {
	return &Style{
		selectors: cache.New(),
		template:  template,
		props:     props,
		id:        "s" + stringHash(template+keySep+props),
	}
}

// NewUniqueStyle creates a style node exempted from de-duplication.
func NewUniqueStyle(template, props string, serial uint64) *Style {
	s := NewStyle(template, props)
	s.id = "u" + strconv.FormatUint(serial, 10)
	return s
}

func (s *Style) ID() string             { return s.id }
func (s *Style) ContentKey() string     { return s.template + keySep + s.props }
func (s *Style) Registry() *cache.Cache { return s.selectors }

// Props returns the literal property string.
func (s *Style) Props() string { return s.props }

// AddSelector registers a concrete selector with this style.
func (s *Style) AddSelector(text string) error {
	return s.selectors.Add(NewSelector(text))
}

// CSS serializes the style. An empty property string yields an empty result:
// a style without declarations must not emit '{}'.
func (s *Style) CSS() string {
	if s.props == "" {
		return ""
	}
	var b strings.Builder
	for i, sel := range s.selectors.Values() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(sel.CSS())
	}
	b.WriteByte('{')
	b.WriteString(s.props)
	b.WriteByte('}')
	return b.String()
}

// Clone returns an independent deep copy, including the selector cache.
func (s *Style) Clone() cache.Item {
	copied := *s
	copied.selectors = s.selectors.Clone()
	return &copied
}

// --- Rule ------------------------------------------------------------------

// Rule is a cache of nested rules and styles plus a literal header — an
// at-rule like "@media (min-width: 500px)", or a bare selector for raw
// nested rules — and optional inline properties. It serializes as
// "<header>{<properties><children>}".
type Rule struct {
	children *cache.Cache // of *Rule | *Style
	header   string
	props    string
	id       string
}

// NewRule creates a rule node.
func NewRule(header, props string) *Rule {
	return &Rule{
		children: cache.New(),
		header:   header,
		props:    props,
		id:       "r" + stringHash(header+keySep+props),
	}
}

func (r *Rule) ID() string             { return r.id }
func (r *Rule) ContentKey() string     { return r.header + keySep + r.props }
func (r *Rule) Registry() *cache.Cache { return r.children }

// Header returns the literal rule header.
func (r *Rule) Header() string { return r.header }

func (r *Rule) CSS() string {
	var b strings.Builder
	b.WriteString(r.header)
	b.WriteByte('{')
	b.WriteString(r.props)
	b.WriteString(r.children.CSS())
	b.WriteByte('}')
	return b.String()
}

// Clone returns an independent deep copy, including all children.
func (r *Rule) Clone() cache.Item {
	copied := *r
	copied.children = r.children.Clone()
	return &copied
}
