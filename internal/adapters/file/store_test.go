package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/scramble/internal/adapters/file"
	"github.com/aretw0/scramble/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunTextStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := file.New(dir)

	require.NoError(t, store.SaveText(context.Background(), "hero", "Ada Lovelace"))

	data, err := os.ReadFile(filepath.Join(dir, "hero.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not leak")
}

func TestFileStore_InvalidKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, store.SaveText(ctx, key, "x"), key)
		_, err := store.LoadText(ctx, key)
		assert.Error(t, err, key)
	}
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, ".scramble", file.New("").BasePath)
}
