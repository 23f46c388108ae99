package stylist

import (
	"hash/fnv"
	"strconv"
	"sync/atomic"
)

// stringHash returns a short, stable checksum for s: FNV-1a/32 rendered in
// base 36. Identifiers of cached nodes and the externally visible class
// names are both derived from it; the finer-grained ContentKey check of the
// cache guards against the (unlikely) collisions a 32-bit hash permits.
func stringHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}

// Process-wide counters. Unique-tagged styles and sheet instances draw from
// these so that they never collide, not even across sheets which are later
// merged into each other.
var (
	uniqueCount   uint64
	instanceCount uint64
)

func nextUnique() uint64 {
	return atomic.AddUint64(&uniqueCount, 1)
}

func nextInstance() uint64 {
	return atomic.AddUint64(&instanceCount, 1)
}
