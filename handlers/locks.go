// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import "sync"

// visitorLocks serializes check-then-append per visitor. Entries are
// dropped once nobody holds or waits on them.
type visitorLocks struct {
	mu    sync.Mutex
	locks map[string]*visitorLock
}

type visitorLock struct {
	mu   sync.Mutex
	refs int
}

func newVisitorLocks() *visitorLocks {
	return &visitorLocks{locks: make(map[string]*visitorLock)}
}

// lock blocks until visitorID is free and returns the matching unlock
func (v *visitorLocks) lock(visitorID string) func() {
	v.mu.Lock()
	l, ok := v.locks[visitorID]
	if !ok {
		l = &visitorLock{}
		v.locks[visitorID] = l
	}
	l.refs++
	v.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		v.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(v.locks, visitorID)
		}
		v.mu.Unlock()
	}
}

// size is the number of visitors currently tracked
func (v *visitorLocks) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.locks)
}
