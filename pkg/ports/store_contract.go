package ports

import (
	"context"
	"testing"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTextStoreContract runs a suite of tests to verify that a TextStore
// implementation adheres to the defined interface contract.
func RunTextStoreContract(t *testing.T, store TextStore) {
	ctx := context.Background()

	t.Run("Load missing key", func(t *testing.T) {
		_, err := store.LoadText(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrTextNotFound)
	})

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.SaveText(ctx, "card", "Hello"))

		text, err := store.LoadText(ctx, "card")
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.SaveText(ctx, "card", "Hello"))
		require.NoError(t, store.SaveText(ctx, "card", "Olá — mundo"))

		text, err := store.LoadText(ctx, "card")
		require.NoError(t, err)
		assert.Equal(t, "Olá — mundo", text)
	})

	t.Run("Empty text is a value", func(t *testing.T) {
		require.NoError(t, store.SaveText(ctx, "blank", ""))

		text, err := store.LoadText(ctx, "blank")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveText(ctx, "gone", "bye"))
		require.NoError(t, store.DeleteText(ctx, "gone"))

		_, err := store.LoadText(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrTextNotFound)

		assert.NoError(t, store.DeleteText(ctx, "gone"), "deleting a missing key is not an error")
	})
}
