/*
Package stylist is a deterministic, de-duplicating stylesheet registry.

Clients hand the registry structured style declarations — ordered lists of
(key, value) pairs, possibly nested under selectors or at-rules — and receive
stable, content-hashed class and animation names in return. Registering the
same content twice yields the same name and stores the underlying nodes only
once: every node is content-addressed and reference-counted inside the
hierarchical cache a sheet is built from (see package cache).

A minimal session looks like this:

	sheet := stylist.New()
	class, err := sheet.RegisterStyle(stylist.Styles{
		{Key: "color", Value: "red"},
		{Key: "&:hover", Value: stylist.Styles{{Key: "color", Value: "blue"}}},
	})
	// class == "f…", sheet.CSS() == ".f…{color:red}.f…:hover{color:blue}"

Nested keys combine with their parent selector by ampersand substitution (if
the key contains '&') or as a descendant. Keys starting with '@' open an
at-rule scope instead; the base selector is carried into it, so a media query
nested below a selector serializes as a separate block wrapping that same
selector.

stylist guarantees textual determinism and reference correctness, not
semantic CSS correctness: it is neither a CSS parser nor a validator, and it
performs no cascade resolution or selector matching. Turning author-facing
style objects into the normalized declaration lists this package consumes is
the business of an input-normalization collaborator; the only normalization
performed here is property-name hyphenation and unit-suffixing of numeric
values (see package cssprop).

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stylist

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'stylist.sheet'.
func tracer() tracing.Trace {
	return tracing.Select("stylist.sheet")
}
