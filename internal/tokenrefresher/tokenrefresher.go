// Package tokenrefresher renews the access token shortly before it expires
// so long-running commands rarely hit a 401 at all.
package tokenrefresher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/golang-jwt/jwt/v5"
	"github.com/noteshq/notesctl/internal/sessions"
)

// RefreshRunner is the guarded refresh operation of the authenticated
// client; sharing it keeps the proactive path and the 401 path behind one
// single-flight flag.
type RefreshRunner interface {
	TryRefresh(ctx context.Context) error
}

type TokenRefresher struct {
	expiryMargin time.Duration
	sessionStore *sessions.SessionStore
	runner       RefreshRunner
}

// GetScheduler returns a scheduler that evaluates the stored access token
// once a minute and refreshes it when it expires within the margin.
func (tr *TokenRefresher) GetScheduler() (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	refreshExpiringTokenTask := func(job gocron.Job) {
		err := tr.RefreshIfExpiring(job.Context())
		if err != nil {
			slog.Error("TOKEN REFRESHER", "message", "RefreshIfExpiring failed", "error", err)
		}
	}

	_, err := s.Every(1).
		Minutes().
		DoWithJobDetails(refreshExpiringTokenTask)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RefreshIfExpiring renews the access token when it expires within the
// configured margin. Tokens without a readable expiry claim are left alone,
// the 401 protocol covers those.
func (tr *TokenRefresher) RefreshIfExpiring(ctx context.Context) error {
	access, err := tr.sessionStore.Access(ctx)
	if err != nil {
		return err
	}
	if access == "" {
		return nil
	}
	expiresAt, err := accessTokenExpiry(access)
	if err != nil {
		slog.Debug("TOKEN REFRESHER", "message", "cannot read the token expiry, skipping", "error", err)
		return nil
	}
	if time.Until(expiresAt) > tr.expiryMargin {
		return nil
	}
	slog.Info("TOKEN REFRESHER", "message", "access token expires soon, refreshing", "expiresAt", expiresAt)
	return tr.runner.TryRefresh(ctx)
}

// accessTokenExpiry reads the exp claim without verifying the signature.
// The client has no signing key and does not need one, the server remains
// the authority on validity.
func accessTokenExpiry(accessToken string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("the access token carries no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

type TokenRefresherOption func(*TokenRefresher) error

func WithExpiryMargin(margin time.Duration) TokenRefresherOption {
	return func(tr *TokenRefresher) error {
		if margin < 0 {
			return fmt.Errorf("the expiry margin cannot be negative")
		}
		tr.expiryMargin = margin
		return nil
	}
}

func WithSessionStore(sessionStore *sessions.SessionStore) TokenRefresherOption {
	return func(tr *TokenRefresher) error {
		tr.sessionStore = sessionStore
		return nil
	}
}

func WithRefreshRunner(runner RefreshRunner) TokenRefresherOption {
	return func(tr *TokenRefresher) error {
		tr.runner = runner
		return nil
	}
}

// NewTokenRefresher creates a new TokenRefresher that handles refreshing the
// access token when it is expiring soon.
func NewTokenRefresher(options ...TokenRefresherOption) (*TokenRefresher, error) {
	tr := TokenRefresher{expiryMargin: 3 * time.Minute}
	for _, opt := range options {
		err := opt(&tr)
		if err != nil {
			return &TokenRefresher{}, err
		}
	}
	if tr.sessionStore == nil {
		return &TokenRefresher{}, fmt.Errorf("the token refresher requires a session store")
	}
	if tr.runner == nil {
		return &TokenRefresher{}, fmt.Errorf("the token refresher requires a refresh runner")
	}
	return &tr, nil
}
