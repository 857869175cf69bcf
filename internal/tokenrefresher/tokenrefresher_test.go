package tokenrefresher

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/noteshq/notesctl/internal/db"
	"github.com/noteshq/notesctl/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls int
}

func (c *countingRunner) TryRefresh(ctx context.Context) error {
	c.calls++
	return nil
}

func forgeToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func setupRefresher(t *testing.T, margin time.Duration) (*TokenRefresher, *sessions.SessionStore, *countingRunner) {
	t.Helper()
	repository, err := db.NewFileTokenRepository(db.WithStorageDir(t.TempDir()))
	require.NoError(t, err)
	store, err := sessions.NewSessionStore(sessions.WithTokenRepository(repository))
	require.NoError(t, err)
	runner := &countingRunner{}
	refresher, err := NewTokenRefresher(
		WithExpiryMargin(margin),
		WithSessionStore(store),
		WithRefreshRunner(runner),
	)
	require.NoError(t, err)
	return refresher, store, runner
}

func TestRefreshIfExpiring(t *testing.T) {
	ctx := context.Background()
	refresher, store, runner := setupRefresher(t, 3*time.Minute)

	// no session, nothing to do
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 0, runner.calls)

	// a token expiring within the margin triggers a refresh
	require.NoError(t, store.Save(ctx, forgeToken(t, time.Now().Add(time.Minute)), "R1"))
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 1, runner.calls)

	// a token with plenty of validity left is left alone
	require.NoError(t, store.Save(ctx, forgeToken(t, time.Now().Add(time.Hour)), ""))
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 1, runner.calls)

	// an already expired token is also refreshed
	require.NoError(t, store.Save(ctx, forgeToken(t, time.Now().Add(-time.Minute)), ""))
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 2, runner.calls)
}

func TestUnreadableTokensAreSkipped(t *testing.T) {
	ctx := context.Background()
	refresher, store, runner := setupRefresher(t, 3*time.Minute)

	require.NoError(t, store.Save(ctx, "not-a-jwt", "R1"))
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 0, runner.calls)

	// a JWT without an exp claim is skipped too
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, signed, ""))
	require.NoError(t, refresher.RefreshIfExpiring(ctx))
	assert.Equal(t, 0, runner.calls)
}

func TestNewTokenRefresherValidation(t *testing.T) {
	_, err := NewTokenRefresher()
	require.Error(t, err)

	repository, err := db.NewFileTokenRepository(db.WithStorageDir(t.TempDir()))
	require.NoError(t, err)
	store, err := sessions.NewSessionStore(sessions.WithTokenRepository(repository))
	require.NoError(t, err)

	_, err = NewTokenRefresher(WithSessionStore(store))
	require.Error(t, err)
	_, err = NewTokenRefresher(WithSessionStore(store), WithRefreshRunner(&countingRunner{}), WithExpiryMargin(-time.Minute))
	require.Error(t, err)
}

func TestGetScheduler(t *testing.T) {
	refresher, _, _ := setupRefresher(t, 3*time.Minute)
	scheduler, err := refresher.GetScheduler()
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Len())
}
