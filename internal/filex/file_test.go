package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alarms.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`[]`), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))

	// Overwrite replaces the previous content entirely.
	require.NoError(t, WriteFileAtomic(path, []byte(`[{"id":"a1"}]`), 0o600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"a1"}]`, string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
