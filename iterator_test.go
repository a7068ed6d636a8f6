package hamt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorOnEmptyTrieIsImmediatelyDone(t *testing.T) {
	h := newIntHAMT(t)
	it := h.Iterator()
	assert.True(t, it.Done())
}

func TestIteratorVisitsEveryEntryExactlyOnce(t *testing.T) {
	h := newIntHAMT(t)
	const n = 2000
	want := make(map[int64]int, n)
	for i := 0; i < n; i++ {
		_, err := h.Insert(int64(i), i*i)
		require.NoError(t, err)
		want[int64(i)] = i * i
	}

	seen := make(map[int64]int, n)
	count := 0
	for it := h.Iterator(); !it.Done(); it.Advance() {
		k, v := it.Key(), *it.Value()
		if _, dup := seen[k]; dup {
			t.Fatalf("key %d visited twice", k)
		}
		seen[k] = v
		count++
	}

	assert.Equal(t, n, count)
	assert.Equal(t, want, seen)
}

func TestIteratorStopsEarlyOnFalse(t *testing.T) {
	h := newIntHAMT(t)
	for i := 0; i < 100; i++ {
		_, err := h.Insert(int64(i), i)
		require.NoError(t, err)
	}

	visited := 0
	h.Iterate(func(int64, int) bool {
		visited++
		return visited < 10
	})
	assert.Equal(t, 10, visited)
}

func TestIteratorDoneKeyValuePanic(t *testing.T) {
	h := newIntHAMT(t)
	it := h.Iterator()
	require.True(t, it.Done())
	assert.Panics(t, func() { it.Key() })
	assert.Panics(t, func() { it.Value() })
	assert.NotPanics(t, func() { it.Advance() })
}
