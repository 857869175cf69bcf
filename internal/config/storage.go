package config

import "fmt"

const StorageTypeFile string = "file"
const StorageTypeRedis string = "redis"
const StorageTypeRedisMock string = "redis-mock"

// StorageConfig selects where the session token pair is persisted. The file
// backend is the default and shares the session between processes on one
// machine; the redis backend shares it across a workstation fleet.
type StorageConfig struct {
	Type  string
	Dir   string
	Redis RedisConfig
}

func (c StorageConfig) Validate(e RunningEnvironment) error {
	switch c.Type {
	case StorageTypeFile:
		if c.Dir == "" {
			return fmt.Errorf("the file storage backend requires a directory")
		}
	case StorageTypeRedis:
		if len(c.Redis.Addresses) == 0 {
			return fmt.Errorf("the redis storage backend requires at least one address")
		}
	case StorageTypeRedisMock:
		if e == Production {
			return fmt.Errorf("storage type cannot be \"redis-mock\" in production")
		}
	default:
		return fmt.Errorf("unrecognized storage type %q", c.Type)
	}
	return nil
}

type RedisConfig struct {
	Addresses  []string
	IsSentinel bool
	Password   RedactedString
	MasterName string
	DBIndex    int
	KeyPrefix  string
}
