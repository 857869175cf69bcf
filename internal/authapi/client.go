// Package authapi issues the unauthenticated credential and token-renewal
// calls. It deliberately bypasses the authenticated client so a failing
// refresh can never trigger another refresh.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/models"
)

const loginPath = "/auth/token/"
const refreshPath = "/auth/refresh/"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Client) post(ctx context.Context, path string, payload any) (tokenResponse, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return tokenResponse{}, 0, err
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return tokenResponse{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, 0, &apperrors.NetworkError{Op: http.MethodPost, URL: url, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return tokenResponse{}, res.StatusCode, nil
	}
	var tokens tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tokens); err != nil {
		return tokenResponse{}, res.StatusCode, fmt.Errorf("cannot decode the token response: %w", err)
	}
	return tokens, res.StatusCode, nil
}

// Login exchanges credentials for a token pair via POST /auth/token/.
func (c *Client) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	tokens, status, err := c.post(ctx, loginPath, map[string]string{"username": username, "password": password})
	if err != nil {
		return models.TokenPair{}, err
	}
	if status >= 400 && status < 500 {
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}
	if status < 200 || status > 299 {
		return models.TokenPair{}, &apperrors.RequestError{Status: status, Message: apperrors.StatusMessage(status, "", "")}
	}
	if tokens.Access == "" {
		return models.TokenPair{}, fmt.Errorf("the login response did not contain an access token")
	}
	return models.TokenPair{Access: tokens.Access, Refresh: tokens.Refresh}, nil
}

// RenewAccess trades a refresh token for a new access token via
// POST /auth/refresh/.
func (c *Client) RenewAccess(ctx context.Context, refreshToken string) (string, error) {
	tokens, status, err := c.post(ctx, refreshPath, map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	if status >= 400 && status < 500 {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if status < 200 || status > 299 {
		return "", &apperrors.RequestError{Status: status, Message: apperrors.StatusMessage(status, "", "")}
	}
	if tokens.Access == "" {
		return "", fmt.Errorf("the refresh response did not contain an access token")
	}
	return tokens.Access, nil
}

type ClientOption func(*Client) error

func WithAPIConfig(apiConfig config.APIConfig) ClientOption {
	return func(c *Client) error {
		if apiConfig.BaseURLString() == "" {
			return fmt.Errorf("the auth client requires a base URL")
		}
		c.baseURL = apiConfig.BaseURLString()
		if apiConfig.RequestTimeoutSeconds > 0 {
			c.httpClient = &http.Client{Timeout: time.Duration(apiConfig.RequestTimeoutSeconds) * time.Second}
		}
		return nil
	}
}

// WithHTTPClient swaps the underlying http client, mostly for tests.
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
		return &Client{}, fmt.Errorf("the auth client requires a base URL")
	}
	return &client, nil
}
