// Package hamt implements a Hash Array Mapped Trie: a bitmap-compressed,
// 32-way branching trie that maps comparable keys to values.
//
// The structure follows Bagwell's "Ideal Hash Trees" (2001). Lookup and
// insertion cost is average O(log32 n): each level of the trie consumes five
// bits of a key's hash to select one of 32 logical child slots, and only the
// populated slots are stored, packed into a contiguous array sized by
// population count.
//
// The trie is mutated in place. It offers no persistence/immutability, no
// thread safety, and no entry removal.
package hamt
