package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("BLOB_DRIVER", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("ENABLE_AUTH", "")
	t.Setenv("API_PREFIX", "")

	c := FromEnv()
	assert.Equal(t, ":3000", c.HTTPAddr)
	assert.Equal(t, "/api", c.APIPrefix)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "fs", c.Blob.Driver)
	assert.Equal(t, 30*time.Second, c.UpstreamTimeout)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.False(t, c.Auth.Enabled)
	require.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ENABLE_AUTH", "yes")
	t.Setenv("PUBLIC_URL", "http://localhost:3000/")
	t.Setenv("BLOB_PUBLIC_URL", "")
	t.Setenv("BLOB_DRIVER", "")

	c := FromEnv()
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, 5*time.Second, c.UpstreamTimeout)
	assert.Equal(t, int64(1024), c.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.True(t, c.Auth.Enabled)
	assert.Equal(t, "http://localhost:3000/media", c.Blob.PublicURL)
}

func TestLoadOverlaysYAML(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("API_PREFIX", "")
	t.Setenv("ENABLE_AUTH", "")
	t.Setenv("TEST_BUCKET", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
upstream_timeout: 2s
blob:
  driver: s3
  bucket: ${TEST_BUCKET}
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 2*time.Second, c.UpstreamTimeout)
	assert.Equal(t, "s3", c.Blob.Driver)
	assert.Equal(t, "from-env", c.Blob.Bucket)
	// untouched keys keep their environment defaults
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "/api", c.APIPrefix)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  driver: oracle\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateAuthNeedsHash(t *testing.T) {
	c := FromEnv()
	c.Auth.Enabled = true
	c.Auth.AdminPassHash = ""
	require.Error(t, c.Validate())
}

func TestLoadValidatesEnvOnly(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")

	t.Setenv("DB_DRIVER", "")
	t.Setenv("BLOB_DRIVER", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("ENABLE_AUTH", "true")
	t.Setenv("ADMIN_PASS_HASH", "")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASS_HASH")

	t.Setenv("ENABLE_AUTH", "")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DB.Driver)
}

func TestDefaultMediaAddress(t *testing.T) {
	t.Setenv("BLOB_DRIVER", "")
	t.Setenv("BLOB_PUBLIC_URL", "")
	t.Setenv("PUBLIC_URL", "")

	t.Setenv("HTTP_ADDR", "")
	assert.Equal(t, "http://localhost:3000/media", FromEnv().Blob.PublicURL)

	t.Setenv("HTTP_ADDR", "0.0.0.0:8080")
	assert.Equal(t, "http://localhost:8080/media", FromEnv().Blob.PublicURL)

	t.Setenv("HTTP_ADDR", "blog.internal:9000")
	assert.Equal(t, "http://blog.internal:9000/media", FromEnv().Blob.PublicURL)

	t.Setenv("BLOB_PUBLIC_URL", "https://cdn.test/blogmedia")
	assert.Equal(t, "https://cdn.test/blogmedia", FromEnv().Blob.PublicURL)
}

func TestDefaultMediaAddressFollowsYAMLAddr(t *testing.T) {
	t.Setenv("BLOB_DRIVER", "")
	t.Setenv("BLOB_PUBLIC_URL", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ENABLE_AUTH", "")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":7070\"\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7070/media", c.Blob.PublicURL)
}
