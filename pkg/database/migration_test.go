package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	t.Run("repository migrations", func(t *testing.T) {
		version, err := LatestVersion(filepath.Join("..", "..", "db", "pg"))
		require.NoError(t, err)
		assert.Equal(t, 3, version)
	})

	t.Run("ignores down files and directories", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000001_a.up.sql", "000001_a.down.sql", "000010_b.up.sql", "000011_c.down.sql", "README.md"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000099_nested.up.sql"), 0o700))

		version, err := LatestVersion(dir)
		require.NoError(t, err)
		assert.Equal(t, 10, version)
	})

	t.Run("empty folder", func(t *testing.T) {
		_, err := LatestVersion(t.TempDir())
		assert.Error(t, err)
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "casting", Password: "pw", Name: "casting", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=casting password=pw dbname=casting sslmode=disable", cfg.DSN())
}

func TestMigrationService_MissingFolder(t *testing.T) {
	ms := NewMigrationService(testLogger, &MigrationConfig{MigrationFolderPath: filepath.Join(t.TempDir(), "absent")})

	err := ms.Migrate(nil, "casting")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
