package hamt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmapTriePhysicalIndexIsPopcountBelow(t *testing.T) {
	var trie bitmapTrie[int, int]
	trie.bitmap = 0b0010_0101 // logical slots 0, 2, 5 populated

	assert.Equal(t, 0, trie.physicalIndex(0))
	assert.Equal(t, 1, trie.physicalIndex(2))
	assert.Equal(t, 2, trie.physicalIndex(5))

	assert.True(t, trie.logicalPositionTaken(0))
	assert.False(t, trie.logicalPositionTaken(1))
	assert.Equal(t, 3, trie.size())
}

func TestBitmapTriePhysicalIndexOutOfRangePanics(t *testing.T) {
	var trie bitmapTrie[int, int]
	assert.Panics(t, func() { trie.physicalIndex(-1) })
	assert.Panics(t, func() { trie.physicalIndex(maxSlots) })
}

func TestBitmapTrieInsertEntryKeepsArrayCompacted(t *testing.T) {
	var trie bitmapTrie[int64, string]
	require.NoError(t, trie.allocate(4, defaultAllocator{}))
	parent := &node[int64, string]{kind: kindInterior, trie: trie}

	unique := []int{10, 2, 20}
	for _, l := range unique {
		_, err := parent.trie.insertEntry(l, entry[int64, string]{Key: int64(l)}, parent, 4, 0, defaultAllocator{})
		require.NoError(t, err)
	}

	require.Equal(t, 3, parent.trie.size())
	for i, l := range []int{2, 10, 20} {
		phys := parent.trie.physicalIndex(l)
		assert.Equal(t, i, phys)
		assert.Equal(t, int64(l), parent.trie.children[phys].leaf.Key)
		assert.Equal(t, i, int(parent.trie.children[phys].slot))
		assert.Same(t, parent, parent.trie.children[phys].parent)
	}
}

func TestBitmapTrieInsertEntryGrowsAndFixesParentLinks(t *testing.T) {
	var trie bitmapTrie[int64, int]
	require.NoError(t, trie.allocate(1, defaultAllocator{}))
	parent := &node[int64, int]{kind: kindInterior, trie: trie}

	_, err := parent.trie.insertEntry(0, entry[int64, int]{Key: 0}, parent, 1, 0, defaultAllocator{})
	require.NoError(t, err)

	// Capacity is exhausted; this insert must grow the backing array and
	// relocate the existing entry, fixing up its parent link.
	_, err = parent.trie.insertEntry(5, entry[int64, int]{Key: 5}, parent, 1, 0, defaultAllocator{})
	require.NoError(t, err)

	require.Greater(t, parent.trie.capacity(), 1)
	for i := 0; i < parent.trie.size(); i++ {
		assert.Same(t, parent, parent.trie.children[i].parent)
		assert.Equal(t, i, int(parent.trie.children[i].slot))
	}
}

func TestBitmapTrieAllocateRefusesUnderLimitedAllocator(t *testing.T) {
	var trie bitmapTrie[int, int]
	alloc := &LimitedAllocator{Limit: 2}
	require.NoError(t, trie.allocate(2, alloc))
	require.ErrorIs(t, trie.allocate(3, alloc), ErrAllocatorExhausted)
}

func TestBitmapTrieClearReleasesEveryDescendant(t *testing.T) {
	alloc := &LimitedAllocator{Limit: 1000}
	root := &node[int64, int]{kind: kindInterior}
	require.NoError(t, root.trie.allocate(4, alloc))

	h := &HAMT[int64, int]{
		hasher: NewIntegerHasher[int64](),
		eq:     DefaultEqual[int64],
		alloc:  alloc,
		root:   root,
		seed:   DefaultSeed,
	}
	for i := 0; i < 200; i++ {
		_, err := h.Insert(int64(i), i)
		require.NoError(t, err)
	}

	usedBefore := alloc.used
	require.Greater(t, usedBefore, 0)

	root.trie.clear(alloc)
	assert.Equal(t, 0, root.trie.size())
	assert.Nil(t, root.trie.children)
	assert.Equal(t, 0, alloc.used)
}

func TestBitmapTrieCloneIntoDeepCopies(t *testing.T) {
	alloc := &LimitedAllocator{Limit: 10000}
	srcRoot := &node[int64, int]{kind: kindInterior}
	require.NoError(t, srcRoot.trie.allocate(4, alloc))
	src := &HAMT[int64, int]{
		hasher: NewIntegerHasher[int64](),
		eq:     DefaultEqual[int64],
		alloc:  alloc,
		root:   srcRoot,
		seed:   DefaultSeed,
	}
	for i := 0; i < 400; i++ {
		_, err := src.Insert(int64(i), i)
		require.NoError(t, err)
	}

	dstRoot := &node[int64, int]{kind: kindInterior}
	require.NoError(t, dstRoot.trie.cloneInto(dstRoot, &srcRoot.trie, alloc))
	dst := &HAMT[int64, int]{
		hasher: src.hasher,
		eq:     src.eq,
		alloc:  alloc,
		root:   dstRoot,
		seed:   src.seed,
		count:  src.count,
	}

	for i := 0; i < 400; i++ {
		sv, ok := src.Find(int64(i))
		require.True(t, ok)
		dv, ok := dst.Find(int64(i))
		require.True(t, ok)
		assert.Equal(t, *sv, *dv)
		assert.NotSame(t, sv, dv)
	}

	checkParentPointers(t, dstRoot, nil)
}
