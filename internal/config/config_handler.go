package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type ConfigHandler struct {
	mainViper   *viper.Viper
	secretViper *viper.Viper
	lock        *sync.Mutex
}

func (c *ConfigHandler) HandleChanges(callback func(Config, error)) {
	c.mainViper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("main config file changed", "path", e.Name)
		callback(c.Config())
	})
	c.secretViper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("secret config file changed", "path", e.Name)
		callback(c.Config())
	})
}

// Creates a configuration handler that reads the configuration files, merges them and can watch
// them for changes. The secret file will always overwrite anything in the non-secret / regular
// file and any environment variables will always overwrite stuff in the secret config, so the
// order of preference from most preferred to least is environment variables, secret config,
// non-secret config.
func NewConfigHandler() *ConfigHandler {
	main := viper.New()
	main.SetConfigType("yaml")
	main.SetConfigName("config")
	secret := viper.New()
	secret.SetConfigType("yaml")
	secret.SetConfigName("secret_config")
	// Viper will look through the list of paths and use the first one where there is a file
	// so the path specified in the env variable will always take precedence over the rest
	configPaths := []string{}
	configPathEnv := os.Getenv("NOTESCTL_CONFIG")
	if configPathEnv != "" {
		configPaths = append(configPaths, configPathEnv)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(userConfigDir, "notesctl"))
	}
	configPaths = append(configPaths, ".")
	for _, path := range configPaths {
		main.AddConfigPath(path)
		secret.AddConfigPath(path)
	}
	setDefaults(main)
	return &ConfigHandler{secretViper: secret, mainViper: main, lock: &sync.Mutex{}}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", string(Development))
	v.SetDefault("api.requesttimeoutseconds", 30)
	v.SetDefault("api.refreshtimeoutseconds", 10)
	v.SetDefault("storage.type", StorageTypeFile)
	v.SetDefault("storage.redis.keyprefix", "notesctl:")
	v.SetDefault("session.expirymarginminutes", 3)
	if stateDir, err := os.UserConfigDir(); err == nil {
		v.SetDefault("storage.dir", filepath.Join(stateDir, "notesctl", "session"))
	}
}

func (c *ConfigHandler) merge() error {
	err := c.secretViper.ReadInConfig()
	if err != nil {
		return err
	}
	var cm map[string]any
	err = c.secretViper.Unmarshal(
		&cm,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				parseStringAsURL(),
			),
		),
	)
	if err != nil {
		return err
	}
	err = c.mainViper.MergeConfigMap(cm)
	if err != nil {
		return err
	}
	return nil
}

func (c *ConfigHandler) getConfig() (Config, error) {
	var output Config
	err := c.mainViper.ReadInConfig()
	if err != nil {
		// a missing main config file is fine as long as defaults plus env vars validate
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}
	// the env variables will overwrite stuff in the secret config if set
	for _, key := range c.mainViper.AllKeys() {
		envKey := "NOTESCTL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		err := c.secretViper.BindEnv(key, envKey)
		if err != nil {
			return Config{}, fmt.Errorf("unable to bind env variable for config key %s: %w", key, err)
		}
	}
	// here the secret config (with any env variables merged) will overwrite anything from the
	// non-secret configuration
	err = c.merge()
	if err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
		slog.Info("could not find any secret config files - only the public file and environment variables will be used")
	}
	err = c.mainViper.Unmarshal(
		&output,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				parseStringAsURL(),
			),
		),
	)
	if err != nil {
		return Config{}, err
	}
	err = output.Validate()
	if err != nil {
		return Config{}, err
	}
	return output, nil
}

func (c *ConfigHandler) Config() (Config, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.getConfig()
}

func (c *ConfigHandler) Watch() {
	c.mainViper.WatchConfig()
	c.secretViper.WatchConfig()
}

func parseStringAsURL() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (interface{}, error) {
		// Check that the data is string
		if f.Kind() != reflect.String {
			return data, nil
		}

		// Check that the target type is our custom type
		if t != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		// Return the parsed value
		dataStr, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("cannot cast URL value to string")
		}
		if dataStr == "" {
			return nil, fmt.Errorf("empty values are not allowed for URLs")
		}
		url, err := url.Parse(dataStr)
		if err != nil {
			return nil, err
		}
		return url, nil
	}
}
