/*
Package cache implements an ordered, reference-counted, recursively
mergeable container for content-addressed items.

A cache maps item identifiers to stored items, preserving insertion order
(which is the serialization order). Every entry carries a reference count:
adding an item that is already present does not duplicate it but increments
its count, recursively merging nested caches where both the stored and the
incoming item are containers. Removal is symmetric; an entry disappears only
when its count drops to zero.

Caches know nothing about CSS. The stylesheet, rule and style node kinds of
the root package are all specializations of this one container.

Mutations bump a monotonically increasing change counter and may be observed
through an optional Listener, which is invoked synchronously and observes a
fully consistent cache state.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cache

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'stylist.cache'.
func tracer() tracing.Trace {
	return tracing.Select("stylist.cache")
}
