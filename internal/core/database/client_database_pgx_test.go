package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Scholara/internal/config"
)

func TestBuildDSN(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		_, err := buildDSN("", "")
		assert.Error(t, err)
	})

	t.Run("no cert keeps url", func(t *testing.T) {
		dsn, err := buildDSN("postgres://u:p@localhost:5432/papers", "")
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@localhost:5432/papers", dsn)
	})

	t.Run("missing cert", func(t *testing.T) {
		_, err := buildDSN("postgres://localhost/papers", filepath.Join(t.TempDir(), "ca.pem"))
		assert.Error(t, err)
	})

	t.Run("cert adds verify-ca", func(t *testing.T) {
		cert := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(cert, []byte("pem"), 0o600))

		dsn, err := buildDSN("postgres://localhost/papers?application_name=x", cert)
		require.NoError(t, err)
		assert.Contains(t, dsn, "sslmode=verify-ca")
		assert.Contains(t, dsn, "application_name=x")
		assert.Contains(t, dsn, "sslrootcert=")
	})
}

func TestNewDatabaseClient_RequiresConfig(t *testing.T) {
	_, err := NewDatabaseClient(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewDatabaseClient(context.Background(), &config.Config{})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestBootstrapScriptIsEmbedded(t *testing.T) {
	data, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "research_chunks")
	assert.Contains(t, string(data), "scholara_meta")
}
