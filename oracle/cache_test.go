package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingOracle struct {
	Oracle
	cmps int
}

func (c *countingOracle) Cmp(ctx context.Context, a, b CT) (Ordering, error) {
	c.cmps++
	return c.Oracle.Cmp(ctx, a, b)
}

func TestCachedDeduplicatesComparisons(t *testing.T) {
	ctx := context.Background()
	under := &countingOracle{Oracle: NewLocal(intCompare)}
	cached := NewCached(under, 16)

	ord, err := cached.Cmp(ctx, []byte("3"), []byte("7"))
	require.NoError(t, err)
	require.Equal(t, Less, ord)
	require.Equal(t, 1, under.cmps)

	// Same pair again: should hit the cache, not the underlying oracle.
	ord, err = cached.Cmp(ctx, []byte("3"), []byte("7"))
	require.NoError(t, err)
	require.Equal(t, Less, ord)
	require.Equal(t, 1, under.cmps)

	// Reversed pair: still a cache hit, flipped ordering, no new call.
	ord, err = cached.Cmp(ctx, []byte("7"), []byte("3"))
	require.NoError(t, err)
	require.Equal(t, Greater, ord)
	require.Equal(t, 1, under.cmps)

	hits, misses, size := cached.Stats()
	require.Equal(t, uint64(2), hits)
	require.Equal(t, uint64(1), misses)
	require.Equal(t, 1, size)
}

func TestCachedEviction(t *testing.T) {
	ctx := context.Background()
	under := &countingOracle{Oracle: NewLocal(intCompare)}
	cached := NewCached(under, 2)

	pairs := [][2]string{{"1", "2"}, {"3", "4"}, {"5", "6"}}
	for _, p := range pairs {
		_, err := cached.Cmp(ctx, []byte(p[0]), []byte(p[1]))
		require.NoError(t, err)
	}

	_, _, size := cached.Stats()
	require.Equal(t, 2, size)

	// The first pair should have been evicted; re-comparing it costs a
	// fresh call to the underlying oracle.
	before := under.cmps
	_, err := cached.Cmp(ctx, []byte("1"), []byte("2"))
	require.NoError(t, err)
	require.Equal(t, before+1, under.cmps)
}
