package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLoadsOnceAndMemoizes(t *testing.T) {
	calls := 0
	loader := LoaderFunc(func(key Key) (*CompressionInfo, error) {
		calls++
		return &CompressionInfo{DecompressionMap: []int{1}}, nil
	})
	c := NewCache(loader)

	key := Key{Hypertable: 1, Chunk: 7}
	info1, err := c.Get(key)
	require.NoError(t, err)
	info2, err := c.Get(key)
	require.NoError(t, err)

	assert.Same(t, info1, info2)
	assert.Equal(t, 1, calls)
}

func TestCacheDisambiguatesByHypertable(t *testing.T) {
	loader := LoaderFunc(func(key Key) (*CompressionInfo, error) {
		return &CompressionInfo{DecompressionMap: []int{int(key.Hypertable)}}, nil
	})
	c := NewCache(loader)

	a, err := c.Get(Key{Hypertable: 1, Chunk: 5})
	require.NoError(t, err)
	b, err := c.Get(Key{Hypertable: 2, Chunk: 5})
	require.NoError(t, err)

	assert.NotEqual(t, a.DecompressionMap, b.DecompressionMap)
	assert.Equal(t, 2, c.Size())
}

func TestCacheLoaderErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	loader := LoaderFunc(func(key Key) (*CompressionInfo, error) { return nil, boom })
	c := NewCache(loader)

	_, err := c.Get(Key{Hypertable: 1, Chunk: 1})
	require.ErrorIs(t, err, boom)
}

func TestCacheInvalidate(t *testing.T) {
	calls := 0
	loader := LoaderFunc(func(key Key) (*CompressionInfo, error) {
		calls++
		return &CompressionInfo{}, nil
	})
	c := NewCache(loader)
	key := Key{Hypertable: 1, Chunk: 1}

	_, err := c.Get(key)
	require.NoError(t, err)
	c.Invalidate(key)
	_, err = c.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
