package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coa/internal/errdefs"
	"coa/internal/storage"
	"coa/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return New(t.TempDir())
	})
}

func TestHeaderWrittenOnlyOnCreation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.AppendRecord(ctx, "coaconfig", []byte("name: a\n")))
	require.NoError(t, s.AppendRecord(ctx, "coaconfig", []byte("name: b\n")))

	data, err := os.ReadFile(filepath.Join(dir, "coaconfig.yaml"))
	require.NoError(t, err)

	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "# coa coaconfig records"))
	assert.True(t, strings.HasPrefix(content, "# coa coaconfig records"))
	assert.Equal(t, 2, strings.Count(content, "---\n"))
}

func TestFilePermissions(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "store")
	s := New(dir)

	require.NoError(t, s.AppendRecord(ctx, "demo_aout", []byte("clientName: demo\n")))

	info, err := os.Stat(filepath.Join(dir, "demo_aout.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	require.NoError(t, s.Reset(ctx, "demo_aout", []byte("clientName: demo\n")))
	info, err = os.Stat(filepath.Join(dir, "demo_aout.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadsHandEditedFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	content := `# my clients
---
name: a # first
clientId: id-a
---
---
name: b
clientId: id-b
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coaconfig.yaml"), []byte(content), 0o600))

	records, err := New(dir).ReadAll(ctx, "coaconfig")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "name: a\nclientId: id-a\n", string(records[0]))
	assert.Equal(t, "name: b\nclientId: id-b\n", string(records[1]))
}

func TestEmptyFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coaconfig.yaml"), nil, 0o600))

	records, err := New(dir).ReadAll(context.Background(), "coaconfig")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCorruptFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coaconfig.yaml"), []byte("name: [unterminated\n"), 0o600))

	_, err := New(dir).ReadAll(context.Background(), "coaconfig")
	require.Error(t, err)
	assert.True(t, errdefs.IsIO(err))
}

func TestReplaceAllOnMissingCollectionCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.ReplaceAll(context.Background(), "coaconfig", func([]byte) (bool, error) { return true, nil }))

	_, err := os.Stat(filepath.Join(dir, "coaconfig.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"demo_aout", "demo_aout"},
		{"my app_aout", "my%20app_aout"},
		{"../etc/passwd", "..%2Fetc%2Fpasswd"},
		{"a%20b", "a%2520b"},
		{"Demo", "%44emo"},
		{"café", "caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeName(tt.name))
		})
	}
}

func TestDistinctNamesUseDistinctFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	names := []string{"a b", "a/b", "a_b", "A_b", "a%20b", "a\\b", "ä_b"}
	for i, name := range names {
		require.NoError(t, s.AppendRecord(ctx, name, []byte(fmt.Sprintf("id: %d\n", i))))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(names))

	for i, name := range names {
		records, err := s.ReadAll(ctx, name)
		require.NoError(t, err)
		require.Len(t, records, 1, name)
		assert.Equal(t, fmt.Sprintf("id: %d\n", i), string(records[0]), name)
		assert.Equal(t, dir, filepath.Dir(s.Location(name)))
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.AppendRecord(ctx, "items", []byte("name: a\n")))
	require.NoError(t, s.ReplaceAll(ctx, "items", func([]byte) (bool, error) { return true, nil }))
	require.NoError(t, s.Reset(ctx, "items", []byte("name: b\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "items.yaml", entries[0].Name())
}
