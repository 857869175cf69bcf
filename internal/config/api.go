package config

import (
	"fmt"
	"net/url"
	"strings"
)

// APIConfig points the client at the notes service.
type APIConfig struct {
	BaseURL               *url.URL
	RequestTimeoutSeconds int
	RefreshTimeoutSeconds int
}

// BaseURLString returns the API host with any trailing slash stripped so
// paths can be appended verbatim.
func (c APIConfig) BaseURLString() string {
	if c.BaseURL == nil {
		return ""
	}
	return strings.TrimRight(c.BaseURL.String(), "/")
}

func (c *APIConfig) Validate() error {
	if c.BaseURL == nil || c.BaseURL.Host == "" {
		return fmt.Errorf("the API base URL is not configured")
	}
	if c.RequestTimeoutSeconds < 0 || c.RefreshTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}
