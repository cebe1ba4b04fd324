package cache

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestComputeIfAbsentReturnsComputedValue(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	calls := 0
	v, err := c.ComputeIfAbsent("k", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, *v)
	require.Equal(t, 1, calls)
}

func TestComputeIfAbsentPropagatesError(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	boom := errors.New("lookup failed")
	_, err := c.ComputeIfAbsent("k", func() (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	// a failed compute caches nothing, the next call recomputes
	v, err := c.ComputeIfAbsent("k", func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, *v)
}

func TestComputeIfAbsentCachesNilPointers(t *testing.T) {
	type rec struct{ id int }
	c := NewCache[string, *rec](time.Minute)

	v, err := c.ComputeIfAbsent("missing", func() (*rec, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Nil(t, *v)
}
