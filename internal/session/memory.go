package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

// MemoryStore keeps sessions in process memory. Expired entries are invisible
// to readers immediately and purged by a janitor goroutine. It is meant for
// tests and single-instance development setups.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]time.Time
	now      func() time.Time
	logger   logger.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// MemoryOption tweaks a MemoryStore at construction time.
type MemoryOption func(*MemoryStore)

// WithMemoryClock replaces time.Now for expiry decisions.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// NewMemoryStore starts a store whose janitor runs every janitorInterval.
func NewMemoryStore(janitorInterval time.Duration, l logger.Logger, opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]map[string]time.Time),
		now:      time.Now,
		logger:   l,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.janitor(janitorInterval)

	return m
}

func (m *MemoryStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userSessions, ok := m.sessions[userID]
	if !ok {
		userSessions = make(map[string]time.Time)
		m.sessions[userID] = userSessions
	}
	userSessions[tokenID] = m.now().Add(ttl)

	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.sessions[userID][tokenID]
	return ok && m.now().Before(expiresAt), nil
}

func (m *MemoryStore) Remove(ctx context.Context, userID, tokenID string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userSessions := m.sessions[userID]
	expiresAt, ok := userSessions[tokenID]
	if !ok {
		return false, nil
	}

	delete(userSessions, tokenID)
	if len(userSessions) == 0 {
		delete(m.sessions, userID)
	}

	return m.now().Before(expiresAt), nil
}

func (m *MemoryStore) RemoveAll(ctx context.Context, userID string) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for _, expiresAt := range m.sessions[userID] {
		if now.Before(expiresAt) {
			removed++
		}
	}
	delete(m.sessions, userID)

	return removed, nil
}

func (m *MemoryStore) Active(ctx context.Context, userID string) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var active []string
	for tokenID, expiresAt := range m.sessions[userID] {
		if now.Before(expiresAt) {
			active = append(active, tokenID)
		}
	}

	return active, nil
}

// Close stops the janitor. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
	return nil
}

// Purge drops every expired session and returns how many were dropped.
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	purged := 0
	for userID, userSessions := range m.sessions {
		for tokenID, expiresAt := range userSessions {
			if !now.Before(expiresAt) {
				delete(userSessions, tokenID)
				purged++
			}
		}
		if len(userSessions) == 0 {
			delete(m.sessions, userID)
		}
	}

	return purged
}

func (m *MemoryStore) janitor(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if purged := m.Purge(); purged > 0 {
				m.logger.Debug("Expired sessions purged", logger.Int("count", purged))
			}
		case <-m.stop:
			return
		}
	}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
