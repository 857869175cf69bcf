package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/noteshq/notesctl/internal/models"
)

// SessionStore owns the persisted token pair. It is the only durable shared
// resource of the client: every process pointed at the same storage shares
// one session, last write wins. Saving and clearing announce the transition
// to local subscribers synchronously and to other processes through the
// repository's notification mechanism.
type SessionStore struct {
	repository  SessionTokenRepository
	lock        sync.Mutex
	subscribers map[int]func(models.SessionEvent)
	nextSubID   int
	watchCancel func()
}

func (s *SessionStore) Access(ctx context.Context) (string, error) {
	return s.repository.GetAccessToken(ctx)
}

func (s *SessionStore) Refresh(ctx context.Context) (string, error) {
	return s.repository.GetRefreshToken(ctx)
}

func (s *SessionStore) IsAuthenticated(ctx context.Context) (bool, error) {
	access, err := s.repository.GetAccessToken(ctx)
	if err != nil {
		return false, err
	}
	return access != "", nil
}

// Save persists a new access token. The refresh token is only written when
// non-empty, otherwise the previously stored one is preserved, so a refresh
// response carrying just a new access token does not wipe the session.
func (s *SessionStore) Save(ctx context.Context, access string, refresh string) error {
	if access == "" {
		return fmt.Errorf("cannot save a session without an access token")
	}
	if err := s.repository.SetAccessToken(ctx, access); err != nil {
		return err
	}
	if refresh != "" {
		if err := s.repository.SetRefreshToken(ctx, refresh); err != nil {
			return err
		}
	}
	s.emit(ctx, models.SessionEvent{Kind: models.SessionLogin})
	return nil
}

// Clear removes both tokens and announces the logout.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.repository.RemoveTokens(ctx); err != nil {
		return err
	}
	s.emit(ctx, models.SessionEvent{Kind: models.SessionLogout})
	return nil
}

// Subscribe registers a handler for session events. Handlers run
// synchronously on the goroutine that triggered the event and are expected
// to be idempotent to repeated identical events. The returned function
// cancels the subscription.
func (s *SessionStore) Subscribe(handler func(models.SessionEvent)) (cancel func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = handler
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.subscribers, id)
	}
}

// StartWatch bridges session events produced by other processes sharing the
// same storage into this store's subscribers. Stop with StopWatch.
func (s *SessionStore) StartWatch(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.watchCancel != nil {
		return fmt.Errorf("the session store is already watching for external events")
	}
	cancel, err := s.repository.WatchTokens(ctx, s.fanOut)
	if err != nil {
		return err
	}
	s.watchCancel = cancel
	return nil
}

func (s *SessionStore) StopWatch() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
}

func (s *SessionStore) emit(ctx context.Context, event models.SessionEvent) {
	if err := s.repository.NotifyTokens(ctx, event); err != nil {
		slog.Error("failed to notify other processes of a session event", "kind", event.Kind, "error", err)
	}
	s.fanOut(event)
}

func (s *SessionStore) fanOut(event models.SessionEvent) {
	s.lock.Lock()
	handlers := make([]func(models.SessionEvent), 0, len(s.subscribers))
	for _, handler := range s.subscribers {
		handlers = append(handlers, handler)
	}
	s.lock.Unlock()
	for _, handler := range handlers {
		handler(event)
	}
}

type SessionStoreOption func(*SessionStore) error

func WithTokenRepository(repository SessionTokenRepository) SessionStoreOption {
	return func(s *SessionStore) error {
		s.repository = repository
		return nil
	}
}

func NewSessionStore(options ...SessionStoreOption) (*SessionStore, error) {
	store := SessionStore{subscribers: map[int]func(models.SessionEvent){}}
	for _, opt := range options {
		err := opt(&store)
		if err != nil {
			return &SessionStore{}, err
		}
	}
	if store.repository == nil {
		return &SessionStore{}, fmt.Errorf("the session store requires a token repository")
	}
	return &store, nil
}
