package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ServesFromCacheAfterFirstFetch(t *testing.T) {
	c := NewCache()
	var fetches atomic.Int32

	fetch := func(context.Context) ([]string, error) {
		fetches.Add(1)
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Lookup(context.Background(), c, KeyFor("op"), fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	}
	assert.Equal(t, int32(1), fetches.Load(), "subsequent reads must hit the cache")
}

func TestInvalidate_IsIdempotent(t *testing.T) {
	c := NewCache()
	var fetches atomic.Int32

	fetch := func(context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}

	key := KeyFor("books")
	_, err := Lookup(context.Background(), c, key, fetch)
	require.NoError(t, err)

	// Invalidating twice in a row must produce only one refetch.
	c.Invalidate(key)
	c.Invalidate(key)

	got, err := Lookup(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, int32(2), fetches.Load())

	// A fresh entry is untouched afterwards.
	_, err = Lookup(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestInvalidate_UnknownKeyIsNoOp(t *testing.T) {
	c := NewCache()
	c.Invalidate(KeyFor("never-fetched"))
}

func TestLookup_DeduplicatesConcurrentReads(t *testing.T) {
	c := NewCache()
	var fetches atomic.Int32
	release := make(chan struct{})

	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		<-release
		return "value", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	started := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			results[i], errs[i] = Lookup(context.Background(), c, KeyFor("shared"), fetch)
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "simultaneous reads must share one request")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "value", results[i])
	}
}

func TestLookup_FailedRefetchReturnsStaleValue(t *testing.T) {
	c := NewCache()
	boom := errors.New("backend down")
	healthy := true

	fetch := func(context.Context) ([]string, error) {
		if !healthy {
			return nil, boom
		}
		return []string{"stale-but-displayable"}, nil
	}

	key := KeyFor("books")
	_, err := Lookup(context.Background(), c, key, fetch)
	require.NoError(t, err)

	healthy = false
	c.Invalidate(key)

	got, err := Lookup(context.Background(), c, key, fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"stale-but-displayable"}, got, "previous value must survive a failed refetch")

	// Recovery replaces the stale entry.
	healthy = true
	got, err = Lookup(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale-but-displayable"}, got)
}

func TestLookup_FailedFirstFetchHasNoValue(t *testing.T) {
	c := NewCache()
	boom := errors.New("nope")

	got, err := Lookup(context.Background(), c, KeyFor("empty"), func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, got)
}

func TestReset_DropsStaleValues(t *testing.T) {
	c := NewCache()
	key := KeyFor("books")
	_, err := Lookup(context.Background(), c, key, func(context.Context) (string, error) {
		return "old-session", nil
	})
	require.NoError(t, err)

	c.Reset()

	got, err := Lookup(context.Background(), c, key, func(context.Context) (string, error) {
		return "new-session", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new-session", got)
}

func TestKeyFor_DistinguishesParameterTuples(t *testing.T) {
	assert.NotEqual(t, KeyFor("search", "ab", "c"), KeyFor("search", "a", "bc"))
	assert.NotEqual(t, KeyFor("search"), KeyFor("search", ""))
	assert.Equal(t, KeyFor("books"), Key("books"))
}
