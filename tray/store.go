package tray

import "sync"

// Store is the lock-guarded slot holding at most one tray resource.
//
// A panic while the lock is held poisons the store: every later acquisition
// fails with ErrLockPoisoned instead of exposing a half-updated resource.
type Store struct {
	mu       sync.Mutex
	res      *Resource
	poisoned bool
	degraded bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Slot is the view of the store handed to functions run by With.
type Slot struct {
	s *Store
}

// Resource returns the live resource, or nil.
func (sl *Slot) Resource() *Resource {
	return sl.s.res
}

// Take removes and returns the live resource.
func (sl *Slot) Take() *Resource {
	res := sl.s.res
	sl.s.res = nil
	return res
}

// Put installs res as the live resource and clears the degraded flag.
func (sl *Slot) Put(res *Resource) {
	sl.s.res = res
	sl.s.degraded = false
}

// Degraded reports whether the last rebuild failed and left the slot empty.
func (sl *Slot) Degraded() bool {
	return sl.s.degraded
}

// MarkDegraded records a failed rebuild.
func (sl *Slot) MarkDegraded() {
	sl.s.degraded = true
}

// With runs fn while holding the store's lock.
func (s *Store) With(fn func(*Slot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return ErrLockPoisoned
	}

	completed := false
	defer func() {
		if !completed {
			s.poisoned = true
		}
	}()

	err := fn(&Slot{s: s})
	completed = true
	return err
}
