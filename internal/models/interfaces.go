package models

import "context"

type IDGenerator interface {
	ID() (string, error)
}

type TokenReader interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetRefreshToken(ctx context.Context) (string, error)
}

type TokenWriter interface {
	SetAccessToken(ctx context.Context, value string) error
	SetRefreshToken(ctx context.Context, value string) error
}

type TokenRemover interface {
	RemoveTokens(ctx context.Context) error
}

// TokenWatcher delivers session events produced by other processes sharing
// the same token storage. The returned cancel function stops the watch.
type TokenWatcher interface {
	WatchTokens(ctx context.Context, handler func(SessionEvent)) (cancel func(), err error)
}

// TokenNotifier announces a session transition to other processes sharing
// the same token storage. Best effort, errors are reported but observers
// may be gone already.
type TokenNotifier interface {
	NotifyTokens(ctx context.Context, event SessionEvent) error
}
