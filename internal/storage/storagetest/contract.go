// Package storagetest provides a behavioural test suite that every
// storage.Backend implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coa/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type item struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

func rec(t *testing.T, name string, value int) []byte {
	t.Helper()
	b, err := yaml.Marshal(item{Name: name, Value: value})
	require.NoError(t, err)
	return b
}

func names(t *testing.T, records [][]byte) []string {
	t.Helper()
	out := make([]string, 0, len(records))
	for _, r := range records {
		var it item
		require.NoError(t, yaml.Unmarshal(r, &it))
		out = append(out, it.Name)
	}
	return out
}

// Run exercises newBackend against the storage.Backend contract. Each subtest
// gets a fresh backend.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	ctx := context.Background()

	t.Run("missing collection reads empty", func(t *testing.T) {
		b := newBackend(t)
		records, err := b.ReadAll(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("append preserves order", func(t *testing.T) {
		b := newBackend(t)
		for i, n := range []string{"a", "b", "c"} {
			require.NoError(t, b.AppendRecord(ctx, "items", rec(t, n, i)))
		}

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, names(t, records))
	})

	t.Run("collections are independent", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.AppendRecord(ctx, "one", rec(t, "x", 1)))
		require.NoError(t, b.AppendRecord(ctx, "two", rec(t, "y", 2)))

		one, err := b.ReadAll(ctx, "one")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, names(t, one))

		two, err := b.ReadAll(ctx, "two")
		require.NoError(t, err)
		assert.Equal(t, []string{"y"}, names(t, two))
	})

	t.Run("replace all keeps matching records in order", func(t *testing.T) {
		b := newBackend(t)
		for i, n := range []string{"a", "b", "c", "d"} {
			require.NoError(t, b.AppendRecord(ctx, "items", rec(t, n, i)))
		}

		err := b.ReplaceAll(ctx, "items", func(r []byte) (bool, error) {
			var it item
			if err := yaml.Unmarshal(r, &it); err != nil {
				return false, err
			}
			return it.Name != "b", nil
		})
		require.NoError(t, err)

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "d"}, names(t, records))

		// Appending after a rewrite still lands at the end.
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "e", 5)))
		records, err = b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "d", "e"}, names(t, records))
	})

	t.Run("replace all aborts on predicate error", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "a", 1)))
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "b", 2)))

		boom := errors.New("boom")
		calls := 0
		err := b.ReplaceAll(ctx, "items", func([]byte) (bool, error) {
			calls++
			if calls == 2 {
				return false, boom
			}
			return false, nil
		})
		require.ErrorIs(t, err, boom)

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names(t, records))
	})

	t.Run("replace all removing everything reads empty", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "a", 1)))
		require.NoError(t, b.ReplaceAll(ctx, "items", func([]byte) (bool, error) { return false, nil }))

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("reset replaces contents", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "old1", 1)))
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "old2", 2)))

		require.NoError(t, b.Reset(ctx, "items", rec(t, "new", 3)))

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, names(t, records))

		require.NoError(t, b.Reset(ctx, "fresh", rec(t, "only", 1)))
		records, err = b.ReadAll(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, names(t, records))
	})

	t.Run("drop removes collection", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.AppendRecord(ctx, "items", rec(t, "a", 1)))

		removed, err := b.Drop(ctx, "items")
		require.NoError(t, err)
		assert.True(t, removed)

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Empty(t, records)

		removed, err = b.Drop(ctx, "items")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		b := newBackend(t)
		const n = 20

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			r := rec(t, "x", i)
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, b.AppendRecord(ctx, "items", r))
			}()
		}
		wg.Wait()

		records, err := b.ReadAll(ctx, "items")
		require.NoError(t, err)
		assert.Len(t, records, n)
	})

	t.Run("typed collection round trip", func(t *testing.T) {
		b := newBackend(t)
		c := storage.NewCollection[item](b, "typed")

		require.NoError(t, c.AppendRecord(ctx, item{Name: "a", Value: 1}))
		require.NoError(t, c.AppendRecord(ctx, item{Name: "b", Value: 2}))
		require.NoError(t, c.ReplaceAll(ctx, func(it item) bool { return it.Value > 1 }))

		items, err := c.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []item{{Name: "b", Value: 2}}, items)
	})
}
