package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServiceConfig(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graphbase.yml")
		require.NoError(t, os.WriteFile(path, []byte("service: blog\n"), 0644))

		cfg, err := LoadServiceConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "blog", cfg.Service)
		assert.Equal(t, "dev", cfg.Stage)
		assert.Equal(t, "datamodel.graphql", cfg.Datamodel)
		assert.Equal(t, "postgres", cfg.Database.Driver)
	})

	t.Run("explicit values win", func(t *testing.T) {
		content := `service: shop
stage: prod
cluster:
  endpoint: https://cluster.example.com
  secret: s3cret
datamodel: schema.graphql
database:
  driver: mysql
  url: root@tcp(localhost:3306)/shop
  schema: shop
seed:
  file: seed.yml
`
		path := filepath.Join(t.TempDir(), "graphbase.yml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadServiceConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "shop", cfg.Service)
		assert.Equal(t, "prod", cfg.Stage)
		assert.Equal(t, "https://cluster.example.com", cfg.Cluster.Endpoint)
		assert.Equal(t, "s3cret", cfg.Cluster.Secret)
		assert.Equal(t, "schema.graphql", cfg.Datamodel)
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, "seed.yml", cfg.Seed.File)
	})

	t.Run("secret falls back to environment", func(t *testing.T) {
		t.Setenv("GRAPHBASE_CLUSTER_SECRET", "env-secret")
		path := filepath.Join(t.TempDir(), "graphbase.yml")
		require.NoError(t, os.WriteFile(path, []byte("service: blog\n"), 0644))

		cfg, err := LoadServiceConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "env-secret", cfg.Cluster.Secret)
	})

	t.Run("unreadable file errors", func(t *testing.T) {
		_, err := LoadServiceConfig(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graphbase.yml")
		require.NoError(t, os.WriteFile(path, []byte("service: [broken\n"), 0644))

		_, err := LoadServiceConfig(path)
		assert.Error(t, err)
	})
}

func TestSaveServiceConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graphbase.yml")

	cfg := &ServiceConfig{Service: "blog", Stage: "staging", Datamodel: "datamodel.graphql"}
	cfg.Cluster.Endpoint = "https://cluster.example.com"
	cfg.Database.Driver = "postgres"
	cfg.Database.URL = "postgres://localhost/blog"

	require.NoError(t, SaveServiceConfig(cfg, path))

	loaded, err := LoadServiceConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Service, loaded.Service)
	assert.Equal(t, cfg.Stage, loaded.Stage)
	assert.Equal(t, cfg.Cluster.Endpoint, loaded.Cluster.Endpoint)
	assert.Equal(t, cfg.Database.URL, loaded.Database.URL)
}
