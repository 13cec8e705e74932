package narrative

import "sync"

// Sequencer hands out increasing sequence numbers per key so that a response
// can be checked against the most recent request for the same user.
//
// Every Next must be paired with a Release. A key is forgotten once all of
// its requests are released.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	entries map[string]*seqEntry
}

type seqEntry struct {
	latest uint64
	refs   int
	commit sync.Mutex
}

// NewSequencer creates an empty sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{entries: make(map[string]*seqEntry)}
}

// Next issues a new sequence number for key
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &seqEntry{}
		s.entries[key] = e
	}
	s.next++
	e.latest = s.next
	e.refs++
	return s.next
}

// IsLatest reports whether seq is the last number issued for key
func (s *Sequencer) IsLatest(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && e.latest == seq
}

// Lock serializes commits for key and returns the unlock func. The caller
// must hold an unreleased sequence number for key.
func (s *Sequencer) Lock(key string) func() {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return func() {}
	}
	e.commit.Lock()
	return e.commit.Unlock
}

// Release marks one request for key as finished
func (s *Sequencer) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return
	}
	if e.refs--; e.refs <= 0 {
		delete(s.entries, key)
	}
}

// Len returns the number of keys with requests in flight
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
