package hamt

import (
	"encoding/binary"
	_ "unsafe" // for go:linkname

	"github.com/cespare/xxhash/v2"
)

// Hasher computes a 64-bit hash for a key. It must be deterministic within
// a process lifetime but need not be cryptographic or seeded itself - the
// HAMT folds its own reseedable seed on top with XOR, so a Hasher that
// always returns the same value for the same key is exactly what's wanted.
type Hasher[K comparable] func(key K) uint64

// Equator decides key equivalence. It must be a total, self-consistent
// equivalence relation.
type Equator[K comparable] func(a, b K) bool

// DefaultEqual compares keys with Go's built-in == , which is what every
// HAMT uses unless constructed with WithEqual.
func DefaultEqual[K comparable](a, b K) bool { return a == b }

// DefaultSeed is the fixed seed a HAMT captures at construction unless
// overridden with WithSeed - the low 32 bits of 0xFF51AFD7ED558CCD, murmur3's
// finalizer constant. Production embedders that care about hash-flooding
// should override it with RandomSeed() or their own per-process value.
const DefaultSeed uint32 = 0xED558CCD

//go:linkname runtimeFastrand64 runtime.fastrand64
func runtimeFastrand64() uint64

// RandomSeed draws a seed from the runtime's fast per-goroutine PRNG. It is
// not a Hasher itself, just a convenient way to get a per-process seed via
// WithSeed(RandomSeed()) to mitigate hash-flooding, as the external hash
// contract requires callers to arrange for themselves.
func RandomSeed() uint32 { return uint32(runtimeFastrand64()) }

// NewStringHasher returns a Hasher for string keys built on xxhash, which is
// fast and has good avalanche behavior for the short keys a HAMT typically
// sees.
func NewStringHasher() Hasher[string] {
	return func(k string) uint64 { return xxhash.Sum64String(k) }
}

// NewBytesHasher returns an xxhash-based hash function for []byte values.
//
// NOTE: []byte is not itself comparable, so the result is a plain func
// rather than a Hasher and can only be used
// with a HAMT keyed by a comparable wrapper type (e.g. a fixed-size array)
// alongside a matching Equator; it's provided for embedders who key by such
// a wrapper but still want to hash the underlying bytes.
func NewBytesHasher() func(k []byte) uint64 {
	return func(k []byte) uint64 { return xxhash.Sum64(k) }
}

// Integer is the set of built-in integer kinds NewIntegerHasher accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// NewIntegerHasher returns a Hasher for any integer-kinded key type,
// running the key's little-endian byte representation through xxhash. It's
// what most of this package's tests use for their int64 keys.
func NewIntegerHasher[K Integer]() Hasher[K] {
	return func(k K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		return xxhash.Sum64(buf[:])
	}
}

// xorshift32 is the reseed step: three shifts, deterministic, and cheap
// enough to run on every hash-budget exhaustion without it mattering.
func xorshift32(s uint32) uint32 {
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	return s
}
