package repository

import (
	"context"
	"github.com/google/uuid"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	count     int64
	userID    uuid.UUID
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStore is the in-process Store used when no redis address is configured
// and in tests. State does not survive restarts and is not shared between replicas.
type memoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

const memorySweepInterval = time.Minute

func NewMemoryStore() Store {
	return &memoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *memoryStore) get(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// put stores an entry and drops expired ones at most once per sweep interval.
// Callers hold s.mu.
func (s *memoryStore) put(key string, e memoryEntry) {
	now := s.now()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		for k, v := range s.entries {
			if v.expired(now) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}
	s.entries[key] = e
}

func (s *memoryStore) LoginAttempts(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _ := s.get(attemptsKey(email))
	return e.count, nil
}

func (s *memoryStore) IncrementLoginAttempts(_ context.Context, email string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptsKey(email)
	e, ok := s.get(key)
	if !ok {
		e = memoryEntry{expiresAt: s.now().Add(window)}
	}
	e.count++
	s.put(key, e)
	return e.count, nil
}

func (s *memoryStore) ResetLoginAttempts(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, attemptsKey(email))
	return nil
}

func (s *memoryStore) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put("auth:revoked:"+tokenID, memoryEntry{expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *memoryStore) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get("auth:revoked:" + tokenID)
	return ok, nil
}

func (s *memoryStore) SaveResetToken(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put("auth:reset:"+token, memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *memoryStore) ConsumeResetToken(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := "auth:reset:" + token
	e, ok := s.get(key)
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	delete(s.entries, key)
	return e.userID, nil
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.get(key)
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.put(key, e)
	return nil
}
