package config

type Config struct {
	Environment RunningEnvironment
	DebugMode   bool
	API         APIConfig
	Storage     StorageConfig
	Session     SessionConfig
	Monitoring  MonitoringConfig
}

func (c *Config) Validate() error {
	err := c.API.Validate()
	if err != nil {
		return err
	}
	err = c.Storage.Validate(c.Environment)
	if err != nil {
		return err
	}
	err = c.Session.Validate()
	if err != nil {
		return err
	}
	return nil
}
