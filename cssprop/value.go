package cssprop

import (
	"fmt"
	"strconv"
	"strings"
)

// Hyphenate converts a camel-cased property name to hyphen-case:
//
//	Hyphenate("backgroundColor")   => "background-color"
//	Hyphenate("WebkitTransform")   => "-webkit-transform"
//	Hyphenate("msFlex")            => "-ms-flex"
//
// Names already in hyphen-case pass through unchanged.
func Hyphenate(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()
	// Microsoft's prefix is lowercase in camel-case notation and therefore
	// escapes the uppercase rule above.
	if strings.HasPrefix(s, "ms-") {
		return "-" + s
	}
	return s
}

// FormatValue renders a single property value as CSS text. Numeric values
// receive a "px" suffix unless the (hyphen-case) property name is unit-less
// according to the table; a nil table means DefaultTable. Strings and
// Stringers pass through verbatim.
//
// Unsupported value types are an error: the registry rejects them at
// registration time.
func FormatValue(t *Table, name string, value interface{}) (string, error) {
	if t == nil {
		t = DefaultTable()
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case int:
		return suffix(t, name, strconv.Itoa(v)), nil
	case int64:
		return suffix(t, name, strconv.FormatInt(v, 10)), nil
	case float64:
		return suffix(t, name, strconv.FormatFloat(v, 'f', -1, 64)), nil
	case float32:
		return suffix(t, name, strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	}
	return "", fmt.Errorf("cssprop: unsupported value type %T for property %q", value, name)
}

func suffix(t *Table, name, number string) string {
	if t.Unitless(name) {
		return number
	}
	return number + "px"
}

// --- Typed value helpers ---------------------------------------------------

// Px renders a length in CSS pixels.
func Px(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) + "px" }

// Em renders a font-relative length.
func Em(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) + "em" }

// Rem renders a root-font-relative length.
func Rem(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) + "rem" }

// Pt renders a length in typographic points.
func Pt(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) + "pt" }

// Pct renders a percentage.
func Pct(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) + "%" }
