package config

import "fmt"

// SessionConfig tunes the refresh behavior of the authenticated client.
type SessionConfig struct {
	// AutoRefresh enables the background refresher in long-running commands
	AutoRefresh bool
	// ExpiryMarginMinutes is how long before expiry an access token is
	// considered due for a proactive refresh
	ExpiryMarginMinutes int
}

func (c SessionConfig) Validate() error {
	if c.ExpiryMarginMinutes < 0 {
		return fmt.Errorf("the expiry margin cannot be negative")
	}
	return nil
}

type SentryConfig struct {
	Enabled     bool
	Dsn         RedactedString
	Environment string
	SampleRate  float64
}

type MonitoringConfig struct {
	Sentry SentryConfig
}
