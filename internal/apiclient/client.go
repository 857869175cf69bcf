// Package apiclient wraps an HTTP client with the authorization and
// session-refresh protocol of the notes service: bearer-token injection on
// the way out and a single-flight, retry-once refresh on a 401 on the way
// back.
package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/broadcast"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/models"
	"github.com/noteshq/notesctl/internal/sessions"
)

const requestIDHeader = "X-Request-ID"

// NetworkErrorMessage is the fixed banner text for requests that never
// produced a response.
const NetworkErrorMessage = "Network error, the notes service could not be reached."

// AuthTransport is the unauthenticated transport used to obtain and renew
// tokens. It must not go through this client, otherwise a failing refresh
// could trigger another refresh.
type AuthTransport interface {
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)
	RenewAccess(ctx context.Context, refreshToken string) (string, error)
}

// Client is the authenticated HTTP client. All its dependencies are
// injected; construct one per process and hand it to whatever issues
// requests.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	sessionStore    *sessions.SessionStore
	authTransport   AuthTransport
	broadcaster     *broadcast.Broadcaster
	refreshTimeout  time.Duration
	refreshInFlight atomic.Bool
	requestIDs      models.IDGenerator
}

type retryMarkerKeyType int

// the retry marker lives on the request's context so retried requests stay
// distinguishable without any cross-request state
const retryMarkerKey retryMarkerKeyType = 0

func isRetried(req *http.Request) bool {
	marked, ok := req.Context().Value(retryMarkerKey).(bool)
	return ok && marked
}

func markRetried(req *http.Request) *http.Request {
	clone := req.Clone(context.WithValue(req.Context(), retryMarkerKey, true))
	clone.Body = nil
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err == nil {
			clone.Body = body
		}
	}
	return clone
}

// Do dispatches the request with the session's bearer token attached and
// runs the response through the refresh protocol. The response is returned
// only for 2xx statuses; all failures come back as errors, with user-facing
// messages published to the broadcaster except for unrecoverable 401s,
// which log the session out silently.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	access, err := c.sessionStore.Access(ctx)
	if err != nil {
		return nil, err
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if req.Header.Get(requestIDHeader) == "" {
		if id, err := c.requestIDs.ID(); err == nil {
			req.Header.Set(requestIDHeader, id)
		}
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.broadcaster.Publish(NetworkErrorMessage)
		return nil, &apperrors.NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return res, nil
	}
	// a retried request that fails again with 401 falls through to the
	// generic failure path, the retry marker is the only loop prevention
	if res.StatusCode == http.StatusUnauthorized && !isRetried(req) && (req.GetBody != nil || req.Body == nil) {
		discardBody(res)
		return c.refreshAndRetry(req)
	}
	message := failureMessage(res)
	c.broadcaster.Publish(message)
	return nil, &apperrors.RequestError{Status: res.StatusCode, Message: message}
}

// refreshAndRetry implements the 401 arm of the response stage: renew the
// access token and replay the original request exactly once. Whenever the
// session cannot be renewed it is cleared and the logout is signaled
// without a banner.
func (c *Client) refreshAndRetry(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	refreshToken, err := c.sessionStore.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, c.forceLogout(ctx)
	}
	if !c.refreshInFlight.CompareAndSwap(false, true) {
		// another request is already refreshing; fail fast instead of
		// queueing behind it
		return nil, c.forceLogout(ctx)
	}
	access, err := func() (string, error) {
		defer c.refreshInFlight.Store(false)
		refreshCtx := ctx
		if c.refreshTimeout > 0 {
			var cancel context.CancelFunc
			refreshCtx, cancel = context.WithTimeout(ctx, c.refreshTimeout)
			defer cancel()
		}
		return c.authTransport.RenewAccess(refreshCtx, refreshToken)
	}()
	if err != nil {
		// the refresh's own error replaces the original 401
		if clearErr := c.sessionStore.Clear(ctx); clearErr != nil {
			slog.Error("clearing the session after a failed refresh failed", "error", clearErr)
		}
		return nil, err
	}
	if err := c.sessionStore.Save(ctx, access, ""); err != nil {
		return nil, err
	}
	return c.Do(markRetried(req))
}

func (c *Client) forceLogout(ctx context.Context) error {
	if err := c.sessionStore.Clear(ctx); err != nil {
		slog.Error("clearing the expired session failed", "error", err)
	}
	return apperrors.ErrSessionExpired
}

// TryRefresh renews the access token ahead of a 401, sharing the
// single-flight guard with the response stage. A refresh already underway
// is not an error here. A rejected refresh token logs the session out; a
// transport failure leaves the session alone so a later 401 can decide.
func (c *Client) TryRefresh(ctx context.Context) error {
	refreshToken, err := c.sessionStore.Refresh(ctx)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return apperrors.ErrTokenNotFound
	}
	if !c.refreshInFlight.CompareAndSwap(false, true) {
		return nil
	}
	access, err := func() (string, error) {
		defer c.refreshInFlight.Store(false)
		refreshCtx := ctx
		if c.refreshTimeout > 0 {
			var cancel context.CancelFunc
			refreshCtx, cancel = context.WithTimeout(ctx, c.refreshTimeout)
			defer cancel()
		}
		return c.authTransport.RenewAccess(refreshCtx, refreshToken)
	}()
	if err != nil {
		if errorsIsInvalidRefresh(err) {
			return c.forceLogout(ctx)
		}
		return err
	}
	return c.sessionStore.Save(ctx, access, "")
}

// Login exchanges credentials through the auth transport and persists the
// resulting token pair.
func (c *Client) Login(ctx context.Context, username string, password string) error {
	pair, err := c.authTransport.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return c.sessionStore.Save(ctx, pair.Access, pair.Refresh)
}

// Logout clears the session and signals the transition.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessionStore.Clear(ctx)
}

func (c *Client) SessionStore() *sessions.SessionStore {
	return c.sessionStore
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type ClientOption func(*Client) error

func WithAPIConfig(apiConfig config.APIConfig) ClientOption {
	return func(c *Client) error {
		if apiConfig.BaseURLString() == "" {
			return fmt.Errorf("the API client requires a base URL")
		}
		c.baseURL = apiConfig.BaseURLString()
		if apiConfig.RequestTimeoutSeconds > 0 {
			c.httpClient = &http.Client{Timeout: time.Duration(apiConfig.RequestTimeoutSeconds) * time.Second}
		}
		if apiConfig.RefreshTimeoutSeconds > 0 {
			c.refreshTimeout = time.Duration(apiConfig.RefreshTimeoutSeconds) * time.Second
		}
		return nil
	}
}

func WithSessionStore(sessionStore *sessions.SessionStore) ClientOption {
	return func(c *Client) error {
		c.sessionStore = sessionStore
		return nil
	}
}

func WithAuthTransport(authTransport AuthTransport) ClientOption {
	return func(c *Client) error {
		c.authTransport = authTransport
		return nil
	}
}

func WithBroadcaster(broadcaster *broadcast.Broadcaster) ClientOption {
	return func(c *Client) error {
		c.broadcaster = broadcaster
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
	client := Client{httpClient: &http.Client{}, requestIDs: models.ULIDGenerator{}}
	for _, opt := range options {
		err := opt(&client)
		if err != nil {
			return &Client{}, err
		}
	}
	if client.baseURL == "" {
		return &Client{}, fmt.Errorf("the API client requires a base URL")
	}
	if client.sessionStore == nil {
		return &Client{}, fmt.Errorf("the API client requires a session store")
	}
	if client.authTransport == nil {
		return &Client{}, fmt.Errorf("the API client requires an auth transport")
	}
	if client.broadcaster == nil {
		return &Client{}, fmt.Errorf("the API client requires a broadcaster")
	}
	return &client, nil
}
