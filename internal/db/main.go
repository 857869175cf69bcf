package db

import (
	"fmt"

	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/models"
)

// TokenRepository is the full set of capabilities a storage backend provides
// to the session store.
type TokenRepository interface {
	models.TokenReader
	models.TokenWriter
	models.TokenRemover
	models.TokenWatcher
	models.TokenNotifier
}

// NewTokenRepository builds the repository matching the configured storage
// backend.
func NewTokenRepository(storageConfig config.StorageConfig) (TokenRepository, error) {
	switch storageConfig.Type {
	case config.StorageTypeFile:
		return NewFileTokenRepository(WithStorageDir(storageConfig.Dir))
	case config.StorageTypeRedis:
		return NewRedisTokenRepository(WithRedisConfig(storageConfig.Redis))
	case config.StorageTypeRedisMock:
		return NewRedisTokenRepository(WithMockRedisClient(storageConfig.Redis.KeyPrefix))
	default:
		return nil, fmt.Errorf("unrecognized storage type %q", storageConfig.Type)
	}
}
