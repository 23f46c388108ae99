package stylist

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/stylist/cache"
	"github.com/npillmayer/stylist/cssprop"
)

// ErrMalformedStyle is thrown if a registration call carries declarations
// the target context cannot hold: properties at the stylesheet top level,
// unsupported value types, subtrees inside an array expansion, and the like.
// A failed registration mutates nothing.
var ErrMalformedStyle = errors.New("malformed style declaration")

// nameHole is the placeholder inside pending rule headers which is replaced
// by the generated identifier at materialization time.
const nameHole = "\x00"

// The compiler walks a normalized style tree depth-first and records what it
// finds as a forest of pending scopes and styles. Selector text stays in
// template form ('&' for the not-yet-known class name) during the walk,
// because the externally visible identifier is a hash over the complete
// traversal and only exists once the walk has finished. Materialization then
// substitutes the identifier and turns the pending forest into cache nodes.

type compiler struct {
	table *cssprop.Table
}

// pendingStyle is a deferred Style node: a selector template, the serialized
// property text, and the de-duplication bypass tag.
type pendingStyle struct {
	template string
	props    string
	unique   bool
	serial   uint64 // drawn during the walk for unique styles
}

// pendingScope is a deferred Rule node ("" header: the registration target
// itself). kids keeps styles and nested scopes interleaved in traversal
// order, which becomes cache insertion order.
type pendingScope struct {
	header string
	props  string
	kids   []pendingKid
}

type pendingKid struct {
	scope *pendingScope
	style *pendingStyle
}

type walkOpts struct {
	interpolate   bool // combine nested selector keys with the parent selector
	preserveOrder bool // keep original nested-key order (at-rule bodies, raw rules)
	atRuleLevel   bool // current level is the immediate body of an at-rule
}

// compileStyle compiles for RegisterStyle: the selector template starts as
// the bare class placeholder and nested keys interpolate into it.
func (c *compiler) compileStyle(styles Styles) (*pendingScope, string, error) {
	root := &pendingScope{}
	pid, err := c.walk(root, "&", styles, walkOpts{interpolate: true})
	return root, pid, err
}

// compileRule compiles for RegisterRule/RegisterCSS: the root selector is
// taken verbatim (possibly empty), nothing is hashed, and key order is
// preserved throughout, because hand-authored rules are order-sensitive.
func (c *compiler) compileRule(selector string, styles Styles) (*pendingScope, error) {
	root := &pendingScope{}
	if strings.HasPrefix(selector, "@") {
		child := &pendingScope{header: selector}
		root.kids = append(root.kids, pendingKid{scope: child})
		_, err := c.walk(child, "", styles, walkOpts{interpolate: true, preserveOrder: true, atRuleLevel: true})
		return root, err
	}
	_, err := c.walk(root, selector, styles, walkOpts{interpolate: true, preserveOrder: true})
	return root, err
}

// compileHashRule compiles for RegisterHashRule/RegisterKeyframes: the body
// is wrapped in an at-rule whose header receives the generated name, and the
// body's keys are literal (frame selectors such as "from" or "75%" are never
// class-relative).
func (c *compiler) compileHashRule(prefix string, styles Styles) (*pendingScope, string, error) {
	root := &pendingScope{}
	child := &pendingScope{header: prefix + " " + nameHole}
	root.kids = append(root.kids, pendingKid{scope: child})
	pid, err := c.walk(child, "", styles, walkOpts{preserveOrder: true, atRuleLevel: true})
	return root, prefix + pid, err
}

type propEntry struct {
	name  string
	decls []string
}

// walk processes one level of the normalized tree: it partitions the level
// into properties and nested keys, serializes the properties, records a
// pending style (or inline rule properties) for them, recurses into the
// nested keys, and accumulates the canonical fingerprint (pid) of the
// subtree.
func (c *compiler) walk(sc *pendingScope, sel string, styles Styles, opts walkOpts) (string, error) {
	props := make([]propEntry, 0, len(styles))
	type nestedEntry struct {
		key string
		sub Styles
	}
	var nested []nestedEntry
	unique := false

	for _, kv := range styles {
		if kv.Key == Unique {
			flag, ok := kv.Value.(bool)
			if !ok {
				return "", fmt.Errorf("stylist: %s wants a bool, got %T: %w", Unique, kv.Value, ErrMalformedStyle)
			}
			unique = unique || flag
			continue
		}
		if sub, ok := kv.Value.(Styles); ok {
			nested = append(nested, nestedEntry{kv.Key, sub})
			continue
		}
		if kv.Value == nil {
			continue // absent value: declaration is dropped
		}
		name := cssprop.Hyphenate(kv.Key)
		if list, ok := kv.Value.([]interface{}); ok {
			entry := propEntry{name: name}
			for _, elem := range list {
				if elem == nil {
					continue
				}
				if _, isSub := elem.(Styles); isSub {
					return "", fmt.Errorf("stylist: property %q: subtree inside an array expansion: %w",
						kv.Key, ErrMalformedStyle)
				}
				text, err := cssprop.FormatValue(c.table, name, elem)
				if err != nil {
					return "", fmt.Errorf("stylist: property %q: %v: %w", kv.Key, err, ErrMalformedStyle)
				}
				entry.decls = append(entry.decls, name+":"+text)
			}
			if len(entry.decls) > 0 {
				props = append(props, entry)
			}
			continue
		}
		text, err := cssprop.FormatValue(c.table, name, kv.Value)
		if err != nil {
			return "", fmt.Errorf("stylist: property %q: %v: %w", kv.Key, err, ErrMalformedStyle)
		}
		props = append(props, propEntry{name: name, decls: []string{name + ":" + text}})
	}

	// Properties serialize in ascending lexical order of their hyphenated
	// name; the sort is stable so that array expansions and repeated names
	// keep their original relative order (fallback-value idiom).
	sort.SliceStable(props, func(i, j int) bool { return props[i].name < props[j].name })
	var b strings.Builder
	for _, p := range props {
		for _, decl := range p.decls {
			if b.Len() > 0 {
				b.WriteByte(';')
			}
			b.WriteString(decl)
		}
	}
	propsText := b.String()

	var serial uint64
	if unique && propsText != "" {
		serial = nextUnique()
	}

	if propsText != "" {
		switch {
		case opts.atRuleLevel && sel == "":
			// Properties in the body of an at-rule without surrounding
			// selector context (@font-face, @keyframes preludes) become the
			// rule's own inline properties.
			sc.props = propsText
		case sel == "":
			return "", fmt.Errorf("stylist: properties at the stylesheet top level need a selector: %w",
				ErrMalformedStyle)
		default:
			sc.kids = append(sc.kids, pendingKid{style: &pendingStyle{
				template: sel,
				props:    propsText,
				unique:   unique,
				serial:   serial,
			}})
		}
	}

	pid := propsText
	if serial != 0 {
		// A unique style must not merge with semantically identical content,
		// so the fresh serial taints the fingerprint as well.
		pid += nameHole + "u" + strconv.FormatUint(serial, 10)
	}

	// Nested selector and at-rule keys sort lexically, except inside at-rule
	// bodies and raw-rule registrations, where hand-authored order is
	// semantically meaningful and kept.
	if !opts.preserveOrder {
		sort.SliceStable(nested, func(i, j int) bool { return nested[i].key < nested[j].key })
	}
	for _, n := range nested {
		if strings.HasPrefix(n.key, "@") {
			child := &pendingScope{header: n.key}
			sc.kids = append(sc.kids, pendingKid{scope: child})
			subPid, err := c.walk(child, sel, n.sub, walkOpts{
				interpolate:   opts.interpolate,
				preserveOrder: true,
				atRuleLevel:   true,
			})
			if err != nil {
				return "", err
			}
			pid += n.key + subPid
			continue
		}
		subPid, err := c.walk(sc, combine(sel, n.key, opts.interpolate), n.sub, walkOpts{
			interpolate:   opts.interpolate,
			preserveOrder: opts.preserveOrder,
		})
		if err != nil {
			return "", err
		}
		pid += n.key + subPid
	}
	tracer().Debugf("compile: level sel=%q props=%q pid=%q", sel, propsText, pid)
	return pid, nil
}

// combine joins a nested selector key with its parent selector: by literal
// ampersand substitution if the key contains '&', as a descendant otherwise.
// Keyframe bodies do not interpolate at all; their keys stand alone.
func combine(parent, key string, interpolate bool) string {
	if !interpolate {
		return key
	}
	if strings.Contains(key, "&") {
		return strings.ReplaceAll(key, "&", parent)
	}
	if parent == "" {
		return key
	}
	return parent + " " + key
}

// materialize turns a pending forest into cache nodes, substituting the now
// known identifier into selector templates and rule headers.
func materialize(sc *pendingScope, name string) ([]cache.Item, error) {
	items := make([]cache.Item, 0, len(sc.kids))
	for _, kid := range sc.kids {
		if kid.style != nil {
			var style *Style
			if kid.style.unique {
				style = NewUniqueStyle(kid.style.template, kid.style.props, kid.style.serial)
			} else {
				style = NewStyle(kid.style.template, kid.style.props)
			}
			if err := style.AddSelector(substitute(kid.style.template, name)); err != nil {
				return nil, err
			}
			items = append(items, style)
			continue
		}
		header := kid.scope.header
		if name != "" {
			header = strings.ReplaceAll(header, nameHole, name)
		}
		rule := NewRule(header, kid.scope.props)
		children, err := materialize(kid.scope, name)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if err := rule.Registry().Add(child); err != nil {
				return nil, err
			}
		}
		items = append(items, rule)
	}
	return items, nil
}

// substitute replaces the class placeholder in a selector template.
func substitute(template, name string) string {
	if name == "" {
		return template
	}
	return strings.ReplaceAll(template, "&", "."+name)
}
