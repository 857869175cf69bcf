package config

import (
	"net/url"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMainFile(fpath string) error {
	contents := `---
api:
  baseurl: https://notes.example.com/api
storage:
  type: redis
  redis:
    addresses:
      - localhost:6379
    password: password-from-main-file
`
	err := os.WriteFile(fpath, []byte(contents), 0666)
	return err
}

func createSecretFile(fpath string) error {
	contents := `---
storage:
  redis:
    password: password-from-secret-file
`
	err := os.WriteFile(fpath, []byte(contents), 0666)
	return err
}

func TestReadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("NOTESCTL_CONFIG", tmpDir)
	require.NoError(t, createMainFile(path.Join(tmpDir, "config.yaml")))
	require.NoError(t, createSecretFile(path.Join(tmpDir, "secret_config.yaml")))
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.NotEqual(t, config, Config{})
	assert.Equal(t, Development, config.Environment)
	assert.Equal(t, "https://notes.example.com/api", config.API.BaseURLString())
	assert.Equal(t, 30, config.API.RequestTimeoutSeconds)
	assert.Equal(t, StorageTypeRedis, config.Storage.Type)
	assert.Equal(t, []string{"localhost:6379"}, config.Storage.Redis.Addresses)
	// the secret file wins over the main file
	assert.Equal(t, RedactedString("password-from-secret-file"), config.Storage.Redis.Password)
	assert.Equal(t, 3, config.Session.ExpiryMarginMinutes)
}

func TestReadConfigWithEnvVars(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("NOTESCTL_CONFIG", tmpDir)
	require.NoError(t, createMainFile(path.Join(tmpDir, "config.yaml")))
	require.NoError(t, createSecretFile(path.Join(tmpDir, "secret_config.yaml")))
	t.Setenv("NOTESCTL_STORAGE_REDIS_PASSWORD", "password-from-env")
	t.Setenv("NOTESCTL_API_BASEURL", "https://staging.example.com/api")
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	// environment variables win over both files
	assert.Equal(t, RedactedString("password-from-env"), config.Storage.Redis.Password)
	assert.Equal(t, "https://staging.example.com/api", config.API.BaseURLString())
}

func TestReadConfigRejectsInvalidStorageType(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("NOTESCTL_CONFIG", tmpDir)
	contents := `---
api:
  baseurl: https://notes.example.com/api
storage:
  type: carrier-pigeon
`
	require.NoError(t, os.WriteFile(path.Join(tmpDir, "config.yaml"), []byte(contents), 0666))
	ch := NewConfigHandler()
	_, err := ch.Config()
	require.Error(t, err)
}

func TestBaseURLString(t *testing.T) {
	baseURL, err := url.Parse("https://notes.example.com/api/")
	require.NoError(t, err)
	apiConfig := APIConfig{BaseURL: baseURL}
	assert.Equal(t, "https://notes.example.com/api", apiConfig.BaseURLString())
	assert.Empty(t, APIConfig{}.BaseURLString())
}

func TestStorageConfigValidate(t *testing.T) {
	assert.NoError(t, StorageConfig{Type: StorageTypeFile, Dir: "/tmp/tokens"}.Validate(Development))
	assert.Error(t, StorageConfig{Type: StorageTypeFile}.Validate(Development))
	assert.NoError(t, StorageConfig{Type: StorageTypeRedis, Redis: RedisConfig{Addresses: []string{"localhost:6379"}}}.Validate(Production))
	assert.Error(t, StorageConfig{Type: StorageTypeRedis}.Validate(Development))
	assert.NoError(t, StorageConfig{Type: StorageTypeRedisMock}.Validate(Development))
	assert.Error(t, StorageConfig{Type: StorageTypeRedisMock}.Validate(Production))
	assert.Error(t, StorageConfig{Type: "carrier-pigeon"}.Validate(Development))
}
