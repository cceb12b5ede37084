package repo

import (
	"sync"
	"time"

	"CourierBot/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore keeps conversation state per user. Idle sessions expire after
// the configured TTL and the least recently used ones are evicted at capacity.
type SessionStore struct {
	cache *expirable.LRU[int64, *model.Session]

	mu    sync.Mutex
	locks map[int64]*userLock
}

// userLock is dropped from the store once nobody holds or waits for it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: expirable.NewLRU[int64, *model.Session](capacity, nil, ttl),
		locks: make(map[int64]*userLock),
	}
}

// Get returns the session of userID.
func (s *SessionStore) Get(userID int64) (*model.Session, bool) {
	return s.cache.Get(userID)
}

// Put stores sess under its user id and refreshes its expiry.
func (s *SessionStore) Put(sess *model.Session) {
	s.cache.Add(sess.UserID, sess)
}

func (s *SessionStore) Delete(userID int64) {
	s.cache.Remove(userID)
}

// Lock serialises event handling for one user and returns the unlock func,
// which must be called exactly once. Different users never contend.
func (s *SessionStore) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, userID)
		}
	}
}
