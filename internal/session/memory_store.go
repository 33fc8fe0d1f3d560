package session

import (
	"sync"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/catalog"
	"github.com/google/uuid"
)

const (
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often idle sessions are swept
	DefaultCleanupInterval = 30 * time.Second
)

// MemoryStore implements Store in process memory. Sessions idle for longer than the TTL are
// evicted by a background loop and are invisible to Get even before the sweep runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	onEvict         func(*Session)

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type Option func(*MemoryStore)

func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) { s.ttl = ttl }
}

func WithCleanupInterval(d time.Duration) Option {
	return func(s *MemoryStore) { s.cleanupInterval = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithEvictHook is called, outside the store lock, for every session removed by expiry.
func WithEvictHook(fn func(*Session)) Option {
	return func(s *MemoryStore) { s.onEvict = fn }
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:        make(map[string]*Session),
		ttl:             DefaultTTL,
		cleanupInterval: DefaultCleanupInterval,
		now:             time.Now,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) expireSessions() {
	s.mu.Lock()
	now := s.now()
	var evicted []*Session
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			evicted = append(evicted, sess)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, sess := range evicted {
			s.onEvict(sess)
		}
	}
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.lastSeen) > s.ttl
}

func (s *MemoryStore) Create(owner string, engine *cart.Engine, catalog *catalog.Catalog) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Owner:     owner,
		Engine:    engine,
		Catalog:   catalog,
		CreatedAt: now,
		lastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *MemoryStore) Get(id, owner string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists || sess.Owner != owner {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

func (s *MemoryStore) Delete(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists || sess.Owner != owner {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones not yet swept included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
