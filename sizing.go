package hamt

import "math/bits"

// maxSlots is the branching factor of the trie: one child per 5-bit hash
// slice.
const maxSlots = 32

// growthByLevel[level][generation] is a guess at how large a bitmapTrie at
// the given depth is likely to grow, given that the caller expects the
// whole HAMT to eventually hold on the order of 2^generation entries.
// Level 0 (the level right under the root) grows early and reaches the
// full 32 slots quickly, since it is the hottest level and eliminating its
// reallocations pays for itself; each deeper level's growth is shifted by
// roughly five generations, reflecting that a deeper trie is only ever
// populated by a shrinking fraction of the total entries. Rows deeper than
// index 3 collapse to a single degenerate row whose guess is always 1.
//
// Column index is the generation: ceil(log2(expected_size)), clamped to
// [0, 22].
var growthByLevel = [5][23]int{
	{2, 3, 5, 8, 13, 21, 29, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32},
	{1, 1, 1, 1, 1, 2, 3, 5, 8, 13, 21, 29, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32, 32},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 5, 8, 13, 21, 29, 32, 32, 32, 32, 32, 32},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 5, 8, 13, 21, 29, 32},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
}

// growthByRequired[required] is the next Fibonacci-flavoured stop >=
// required, used as a fallback whenever the per-level guess undershoots
// what's actually needed right now.
var growthByRequired = [maxSlots + 1]int{
	1, 1, 2, 3, 5, 5, 8, 8, 8, 13, 13, 13, 13, 13, 21, 21, 21, 21, 21, 21, 21, 21,
	29, 29, 29, 29, 29, 29, 29, 29, 32, 32, 32,
}

// sizingGeneration maps a caller's expected eventual entry count to the
// generation bucket used to index growthByLevel.
func sizingGeneration(expectedSize int) int {
	if expectedSize < 1 {
		expectedSize = 1
	}
	if expectedSize-1 == 0 {
		return 0
	}
	generation := bits.Len(uint(expectedSize - 1))
	if generation > 22 {
		generation = 22
	}
	return generation
}

// nextTrieCapacity returns a child-array capacity in [required, 32] for a
// bitmapTrie at the given depth that is about to hold `required` entries,
// given the caller's hint that the whole HAMT will eventually hold on the
// order of expectedSize entries.
func nextTrieCapacity(required, expectedSize, level int) int {
	if required < 1 {
		required = 1
	}
	if required > maxSlots {
		required = maxSlots
	}

	row := level
	if row > 4 {
		row = 4
	}
	generation := sizingGeneration(expectedSize)
	guess := growthByLevel[row][generation]

	if required > guess {
		return growthByRequired[required]
	}
	if growthByRequired[required] > guess {
		return growthByRequired[required]
	}
	return guess
}
