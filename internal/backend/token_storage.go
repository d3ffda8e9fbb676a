// Package backend 提供 domain.Backend 的实现：进程内（Embedded）和 HTTP（Remote）
package backend

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/haierkeys/fast-note-client/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// TokenStorage persists the current session between calls (and, for the
// file implementation, between process runs).
type TokenStorage interface {
	// Load returns the stored session or nil when there is none.
	Load() (*domain.Session, error)
	Save(session *domain.Session) error
	Clear() error
}

// MemoryTokenStorage keeps the session in memory.
type MemoryTokenStorage struct {
	mu      sync.RWMutex
	session *domain.Session
}

func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{}
}

func (m *MemoryTokenStorage) Load() (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.session), nil
}

func (m *MemoryTokenStorage) Save(session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = cloneSession(session)
	return nil
}

func (m *MemoryTokenStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileTokenStorage keeps the session as a JSON file readable only by the
// owner.
type FileTokenStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

func (f *FileTokenStorage) Load() (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read session file")
	}
	if len(data) == 0 {
		return nil, nil
	}
	session := &domain.Session{}
	if err := sonic.Unmarshal(data, session); err != nil {
		return nil, errors.Wrap(err, "decode session file")
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return session, nil
}

func (f *FileTokenStorage) Save(session *domain.Session) error {
	if session == nil {
		return f.Clear()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := sonic.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	return errors.Wrap(os.WriteFile(f.path, data, 0o600), "write session file")
}

func (f *FileTokenStorage) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.Clone()
	return &c
}
