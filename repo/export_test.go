package repo

// LockEntries reports how many users currently have a lock entry.
func (s *SessionStore) LockEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
