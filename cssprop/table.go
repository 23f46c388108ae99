package cssprop

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Properties which accept bare numbers, i.e. which FormatValue will not
// suffix with "px". This is the base list; vendor-prefixed variants are
// derived from it.
var unitlessProperties = []string{
	"animation-iteration-count",
	"box-flex",
	"box-flex-group",
	"column-count",
	"counter-increment",
	"counter-reset",
	"flex",
	"flex-grow",
	"flex-positive",
	"flex-shrink",
	"flex-negative",
	"font-weight",
	"line-clamp",
	"line-height",
	"opacity",
	"order",
	"orphans",
	"tab-size",
	"widows",
	"z-index",
	"zoom",
}

// Vendor prefixes under which unit-less properties are replicated.
var vendorPrefixes = []string{"-webkit-", "-ms-", "-moz-", "-o-"}

// Config is the external representation of the normalization tables. The
// zero value means "use the built-in defaults"; non-empty fields replace the
// corresponding default wholesale.
type Config struct {
	Unitless []string `yaml:"unitless"` // base names of unit-less properties
	Prefixes []string `yaml:"prefixes"` // vendor prefixes to replicate them under
}

// ReadConfig reads a Config from YAML.
func ReadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("cssprop: cannot read table configuration: %v", err)
	}
	return cfg, nil
}

// Table answers whether a (hyphen-case) property name is unit-less. The zero
// value is not usable; obtain tables from DefaultTable or NewTable.
type Table struct {
	unitless map[string]bool
}

// defaultTable is shared by every caller not supplying its own.
var defaultTable = NewTable(Config{})

// DefaultTable returns the table built from the built-in configuration.
func DefaultTable() *Table {
	return defaultTable
}

// NewTable builds a lookup table from a configuration, falling back to the
// built-in lists for empty fields.
func NewTable(cfg Config) *Table {
	base := cfg.Unitless
	if len(base) == 0 {
		base = unitlessProperties
	}
	prefixes := cfg.Prefixes
	if len(prefixes) == 0 {
		prefixes = vendorPrefixes
	}
	t := &Table{unitless: make(map[string]bool, len(base)*(len(prefixes)+1))}
	for _, name := range base {
		t.unitless[name] = true
		for _, prefix := range prefixes {
			t.unitless[prefix+name] = true
		}
	}
	tracer().Debugf("cssprop: table with %d unit-less entries", len(t.unitless))
	return t
}

// Unitless is a predicate for properties which take bare numbers.
func (t *Table) Unitless(name string) bool {
	return t.unitless[name]
}
