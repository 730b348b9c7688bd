package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"coa/internal/storage"
	"coa/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		s, err := Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpenCreatesFileAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "coa.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendRecord(ctx, "coaconfig", []byte("name: demo\n")))
	require.NoError(t, s.Close())

	// Reopening re-runs migrations as a no-op and sees the data.
	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	records, err := s.ReadAll(ctx, "coaconfig")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "name: demo\n", string(records[0]))
}
