package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("save and read back", func(t *testing.T) {
		rel, err := store.Save([]byte("%PDF-1.3"), "REC-LIQ-000012.pdf", "liquidations", at)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(rel, "liquidations/2024/03/REC-LIQ-000012_"))
		assert.Equal(t, ".pdf", filepath.Ext(rel))
		assert.True(t, store.Exists(rel))

		data, err := store.Read(rel)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.3", string(data))
	})

	t.Run("unsafe characters are replaced", func(t *testing.T) {
		rel, err := store.Save([]byte("x"), "../estado cuenta.csv", "statements", at)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(rel, "statements/2024/03/estado_cuenta_"))
	})

	t.Run("paths outside the base are rejected", func(t *testing.T) {
		_, err := store.Read("../../etc/passwd")
		assert.Error(t, err)
		assert.False(t, store.Exists("../outside.txt"))
	})
}
