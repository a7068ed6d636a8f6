package hamt

import "errors"

// ErrAllocatorExhausted is returned by Insert when the configured Allocator
// refused to grow a bucket's child array. The trie is left exactly as it was
// before the call.
var ErrAllocatorExhausted = errors.New("hamt: allocator exhausted")

// ErrUnresolvableCollision is returned by Insert on the pathological case
// where two distinct keys keep landing on the same hash slice across a
// reseed boundary, i.e. their hashes are indistinguishable under every seed
// the schedule will ever produce. The pre-existing entry is left untouched
// and Len is unchanged.
var ErrUnresolvableCollision = errors.New("hamt: unresolvable hash collision across reseed")

// contractViolation panics on programmer error: wrong variant access,
// out-of-range logical index, double insert at a taken slot. These are
// bugs in this package or in a caller that broke an invariant, never
// something a well-behaved caller can trigger, so we panic instead of
// threading an error return through every accessor.
func contractViolation(msg string) {
	panic("hamt: contract violation: " + msg)
}
