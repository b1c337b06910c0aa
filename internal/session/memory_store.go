package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It is used when Redis is
// unreachable at startup; sessions do not survive a restart and are not
// shared between instances.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	byAccount map[uint64]map[string]struct{}
	now       func() time.Time
}

type memoryEntry struct {
	sess    Session
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  map[string]memoryEntry{},
		byAccount: map[uint64]map[string]struct{}{},
		now:       time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = memoryEntry{sess: sess, expires: s.now().Add(ttl)}
	ids, ok := s.byAccount[sess.Account.ID]
	if !ok {
		ids = map[string]struct{}{}
		s.byAccount[sess.Account.ID] = ids
	}
	ids[sess.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNoSession
	}
	if !s.now().Before(e.expires) {
		s.remove(e.sess.Account.ID, id)
		return Session{}, ErrNoSession
	}
	return e.sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, accountID uint64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(accountID, id)
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, accountID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byAccount[accountID] {
		delete(s.sessions, id)
	}
	delete(s.byAccount, accountID)
	return nil
}

func (s *MemoryStore) remove(accountID uint64, id string) {
	delete(s.sessions, id)
	if ids, ok := s.byAccount[accountID]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byAccount, accountID)
		}
	}
}
