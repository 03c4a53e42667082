package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache:
  driver: valkey
  addr: localhost:6379
  codec: msgpack
catalog:
  maxPageSize: 20
auth:
  adminEmails: [ops@example.com]
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("CACHE_PROFILE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, CacheDriverValkey, cfg.Cache.Driver)
	require.Equal(t, "msgpack", cfg.Cache.Codec)
	require.Equal(t, 20, cfg.Catalog.MaxPageSize)
	require.Equal(t, 1, cfg.Catalog.DefaultPageSize)
	require.Equal(t, time.Minute, cfg.Cache.ProfileTTL)
	require.Equal(t, 24*time.Hour, cfg.Cache.CatalogTTL)
	require.Equal(t, []string{"ops@example.com"}, cfg.Auth.AdminEmails)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Cache.Driver = CacheDriverRedis
	require.Error(t, cfg.Validate())
	cfg.Cache.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())

	cfg.Cache.Driver = "memcached"
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Catalog.MaxPageSize = 0
	require.Error(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a@x.io", "b@x.io"}, splitList(" a@x.io, ,b@x.io"))
}
