// Package health checks the notes service health endpoint. The call is
// public, so it goes out without credentials and outside the refresh
// protocol.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/models"
)

const healthPath = "/health/"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Status fetches the service health, optionally with the detailed checks.
func (c *Client) Status(ctx context.Context, withChecks bool) (models.HealthStatus, error) {
	url := c.baseURL + healthPath
	if withChecks {
		url += "?checks=1"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.HealthStatus{}, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.HealthStatus{}, &apperrors.NetworkError{Op: http.MethodGet, URL: url, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return models.HealthStatus{}, &apperrors.RequestError{
			Status:  res.StatusCode,
			Message: apperrors.StatusMessage(res.StatusCode, "", ""),
		}
	}
	var status models.HealthStatus
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		return models.HealthStatus{}, fmt.Errorf("cannot decode the health response: %w", err)
	}
	return status, nil
}

type ClientOption func(*Client) error

func WithAPIConfig(apiConfig config.APIConfig) ClientOption {
	return func(c *Client) error {
		if apiConfig.BaseURLString() == "" {
			return fmt.Errorf("the health client requires a base URL")
		}
		c.baseURL = apiConfig.BaseURLString()
		if apiConfig.RequestTimeoutSeconds > 0 {
			c.httpClient = &http.Client{Timeout: time.Duration(apiConfig.RequestTimeoutSeconds) * time.Second}
		}
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

func NewClient(options ...ClientOption) (*Client, error) {
	client := Client{httpClient: &http.Client{}}
	for _, opt := range options {
		err := opt(&client)
		if err != nil {
			return &Client{}, err
		}
	}
	if client.baseURL == "" {
		return &Client{}, fmt.Errorf("the health client requires a base URL")
	}
	return &client, nil
}
