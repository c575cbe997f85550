package dbkeeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopLog struct{}

func (nopLog) Info(string, ...zap.Field)  {}
func (nopLog) Error(string, ...zap.Field) {}

func TestMigrationsPath(t *testing.T) {
	t.Run("absolute", func(t *testing.T) {
		dir := t.TempDir()
		got, err := migrationsPath(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("repository root fallback", func(t *testing.T) {
		got, err := migrationsPath("migrations")
		require.NoError(t, err)
		for _, name := range []string{"000001_contact_messages.up.sql", "000002_catalog_files.up.sql"} {
			_, err = os.Stat(filepath.Join(got, name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := migrationsPath("no-such-migrations")
		assert.Error(t, err)
	})
}

func TestNewDBKeeper_EmptyDSN(t *testing.T) {
	k := NewDBKeeper(context.Background(), func() string { return "" }, "migrations", nopLog{})
	assert.Nil(t, k)
}

func TestNewDBKeeper_InvalidDSN(t *testing.T) {
	k := NewDBKeeper(context.Background(), func() string { return "postgres://%zz" }, "migrations", nopLog{})
	assert.Nil(t, k)
}
