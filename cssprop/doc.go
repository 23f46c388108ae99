/*
Package cssprop normalizes CSS property names and values at the boundary to
the style registry.

The registry core consumes property names in hyphen-case and values as
literal strings. This package provides the two normalization steps the core
performs itself — hyphenation of camel-cased names and unit-suffixing of
numeric values — together with the static configuration data they depend on:
the whitelist of unit-less properties and the vendor prefixes under which
whitelist entries are replicated. Everything else (shorthand expansion,
vendor-prefixed property name generation, value validation) is the business
of an input-normalization collaborator and out of scope here.

The built-in tables can be replaced or extended through a Config, which may
be read from YAML.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cssprop

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'stylist.props'.
func tracer() tracing.Trace {
	return tracing.Select("stylist.props")
}
