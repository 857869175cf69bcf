package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/noteshq/notesctl/internal/apperrors"
	"github.com/noteshq/notesctl/internal/models"
)

const accessTokenFile = "access-token"
const refreshTokenFile = "refresh-token"

// FileTokenRepository persists the token pair as two files in a directory.
// Every process pointed at the same directory shares the session, and the
// fsnotify watch lets them observe each other's logins and logouts.
type FileTokenRepository struct {
	dir string
}

func (f *FileTokenRepository) readToken(name string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (f *FileTokenRepository) writeToken(name string, value string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	err := os.WriteFile(filepath.Join(f.dir, name), []byte(value), 0o600)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (f *FileTokenRepository) GetAccessToken(ctx context.Context) (string, error) {
	return f.readToken(accessTokenFile)
}

func (f *FileTokenRepository) GetRefreshToken(ctx context.Context) (string, error) {
	return f.readToken(refreshTokenFile)
}

func (f *FileTokenRepository) SetAccessToken(ctx context.Context, value string) error {
	return f.writeToken(accessTokenFile, value)
}

func (f *FileTokenRepository) SetRefreshToken(ctx context.Context, value string) error {
	return f.writeToken(refreshTokenFile, value)
}

func (f *FileTokenRepository) RemoveTokens(ctx context.Context) error {
	for _, name := range []string{accessTokenFile, refreshTokenFile} {
		err := os.Remove(filepath.Join(f.dir, name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
		}
	}
	return nil
}

// NotifyTokens is a no-op for the file repository, the file writes themselves
// are what other processes observe.
func (f *FileTokenRepository) NotifyTokens(ctx context.Context, event models.SessionEvent) error {
	return nil
}

// WatchTokens watches the storage directory and reports a login or logout
// event whenever a token file changes, based on whether an access token is
// present after the change. Watches deliver events for this process' own
// writes too, handlers are expected to tolerate repeats.
func (f *FileTokenRepository) WatchTokens(ctx context.Context, handler func(models.SessionEvent)) (cancel func(), err error) {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if name != accessTokenFile && name != refreshTokenFile {
					continue
				}
				access, err := f.GetAccessToken(ctx)
				if err != nil {
					continue
				}
				if access != "" {
					handler(models.SessionEvent{Kind: models.SessionLogin})
				} else {
					handler(models.SessionEvent{Kind: models.SessionLogout})
				}
			case <-watcher.Errors:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		close(done)
		watcher.Close()
	}, nil
}

type FileTokenRepositoryOption func(*FileTokenRepository) error

func WithStorageDir(dir string) FileTokenRepositoryOption {
	return func(f *FileTokenRepository) error {
		if dir == "" {
			return fmt.Errorf("the token storage directory cannot be empty")
		}
		f.dir = dir
		return nil
	}
}

func NewFileTokenRepository(options ...FileTokenRepositoryOption) (*FileTokenRepository, error) {
	repo := FileTokenRepository{}
	for _, opt := range options {
		err := opt(&repo)
		if err != nil {
			return &FileTokenRepository{}, err
		}
	}
	if repo.dir == "" {
		return &FileTokenRepository{}, fmt.Errorf("the token storage directory is not configured")
	}
	return &repo, nil
}
