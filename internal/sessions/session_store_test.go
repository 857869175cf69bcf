package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/noteshq/notesctl/internal/db"
	"github.com/noteshq/notesctl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*SessionStore, *[]models.SessionEvent) {
	t.Helper()
	repository, err := db.NewFileTokenRepository(db.WithStorageDir(t.TempDir()))
	require.NoError(t, err)
	store, err := NewSessionStore(WithTokenRepository(repository))
	require.NoError(t, err)
	events := []models.SessionEvent{}
	store.Subscribe(func(event models.SessionEvent) {
		events = append(events, event)
	})
	return store, &events
}

func TestSaveAndClear(t *testing.T) {
	ctx := context.Background()
	store, events := setupStore(t)

	authenticated, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)

	require.NoError(t, store.Save(ctx, "A1", "R1"))
	access, err := store.Access(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", access)
	refresh, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R1", refresh)
	authenticated, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authenticated)

	require.NoError(t, store.Clear(ctx))
	access, err = store.Access(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
	refresh, err = store.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)

	require.Len(t, *events, 2)
	assert.Equal(t, models.SessionLogin, (*events)[0].Kind)
	assert.Equal(t, models.SessionLogout, (*events)[1].Kind)
}

func TestSavePreservesRefreshToken(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	require.NoError(t, store.Save(ctx, "A1", "R1"))
	// a refresh response carries only a new access token
	require.NoError(t, store.Save(ctx, "A2", ""))

	access, err := store.Access(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A2", access)
	refresh, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R1", refresh)
}

func TestSaveRequiresAccessToken(t *testing.T) {
	ctx := context.Background()
	store, events := setupStore(t)

	require.Error(t, store.Save(ctx, "", "R1"))
	assert.Empty(t, *events)
}

func TestSubscribeCancel(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	calls := 0
	cancel := store.Subscribe(func(event models.SessionEvent) {
		calls++
	})

	require.NoError(t, store.Save(ctx, "A1", "R1"))
	assert.Equal(t, 1, calls)

	cancel()
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 1, calls)
}

func TestWatchSeesOtherProcessWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repositoryA, err := db.NewFileTokenRepository(db.WithStorageDir(dir))
	require.NoError(t, err)
	repositoryB, err := db.NewFileTokenRepository(db.WithStorageDir(dir))
	require.NoError(t, err)
	storeA, err := NewSessionStore(WithTokenRepository(repositoryA))
	require.NoError(t, err)
	storeB, err := NewSessionStore(WithTokenRepository(repositoryB))
	require.NoError(t, err)

	events := make(chan models.SessionEvent, 16)
	storeA.Subscribe(func(event models.SessionEvent) {
		events <- event
	})
	require.NoError(t, storeA.StartWatch(ctx))
	defer storeA.StopWatch()

	// a watch can deliver repeats, wait for the wanted kind and drain the rest
	waitFor := func(kind models.SessionEventKind) {
		t.Helper()
		require.Eventually(t, func() bool {
			for {
				select {
				case event := <-events:
					if event.Kind == kind {
						return true
					}
				default:
					return false
				}
			}
		}, 2*time.Second, 10*time.Millisecond)
	}

	// storeB plays the role of a second process sharing the same storage
	require.NoError(t, storeB.Save(ctx, "A1", "R1"))
	waitFor(models.SessionLogin)

	require.NoError(t, storeB.Clear(ctx))
	waitFor(models.SessionLogout)

	// starting a second watch on the same store is rejected
	require.Error(t, storeA.StartWatch(ctx))
}
