package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"quill/internal/modules/prompt/domain"
	promptout "quill/internal/modules/prompt/port/out"
)

// WatchedPromptStore caches the prompts of a directory-backed store and drops
// the cache whenever a note in the directory changes.
type WatchedPromptStore struct {
	inner   promptout.PromptStore
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}

	mu     sync.Mutex
	cached []domain.Prompt
	valid  bool
	gen    uint64
	closed bool
}

// NewWatchedPromptStore starts watching dir. When dir does not exist the
// store is a plain passthrough to inner.
func NewWatchedPromptStore(inner promptout.PromptStore, dir string, logger *zap.Logger) (*WatchedPromptStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WatchedPromptStore{inner: inner, logger: logger, done: make(chan struct{})}
	if _, err := os.Stat(dir); dir == "" || errors.Is(err, fs.ErrNotExist) {
		close(s.done)
		return s, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	s.watcher = watcher
	go s.watch()
	return s, nil
}

func (s *WatchedPromptStore) List(ctx context.Context) ([]domain.Prompt, error) {
	if s.watcher == nil {
		return s.inner.List(ctx)
	}
	s.mu.Lock()
	if s.valid {
		out := append([]domain.Prompt(nil), s.cached...)
		s.mu.Unlock()
		return out, nil
	}
	gen := s.gen
	s.mu.Unlock()

	prompts, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	// A change that landed while listing leaves the cache cold.
	if gen == s.gen {
		s.cached = append([]domain.Prompt(nil), prompts...)
		s.valid = true
	}
	s.mu.Unlock()
	return prompts, nil
}

func (s *WatchedPromptStore) Save(ctx context.Context, prompt domain.Prompt) (string, error) {
	writer, ok := s.inner.(promptout.PromptWriter)
	if !ok {
		return "", fmt.Errorf("prompt store is read-only")
	}
	s.invalidate()
	return writer.Save(ctx, prompt)
}

func (s *WatchedPromptStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *WatchedPromptStore) watch() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			s.logger.Debug("prompt note changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			s.invalidate()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("prompt watcher", zap.Error(err))
		}
	}
}

func (s *WatchedPromptStore) invalidate() {
	s.mu.Lock()
	s.valid = false
	s.cached = nil
	s.gen++
	s.mu.Unlock()
}
