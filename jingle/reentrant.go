package jingle

import (
	"sync"
	"sync/atomic"
)

var goroutineSeq atomic.Uint64

// callerID is a cheap per-logical-caller token for reentrancy checks.
// Go has no goroutine-local storage, so Session callers must pass one
// explicitly down the call chain (see reentrantMutex.lock); a zero
// value never matches a real token and so never appears reentrant.
type callerID uint64

// newCallerID allocates a token identifying one top-level entry into
// the Session API, so that an internal call back into the same method
// set (get_event calling hangup, spec.md §9 "Mutex reentrancy") can be
// recognized and skip the blocking acquire.
func newCallerID() callerID {
	return callerID(goroutineSeq.Add(1))
}

// reentrantMutex lets the same logical caller re-enter while holding
// the lock, without allowing two different callers to do so
// concurrently. sync.Mutex is deliberately not reentrant, and nothing
// in the retrieval pack offers this primitive, so it is built directly
// on a plain mutex-guarded condition variable.
type reentrantMutex struct {
	mu    sync.Mutex
	cond  sync.Cond
	held  bool
	owner callerID
	depth int

	initOnce sync.Once
}

func (m *reentrantMutex) init() {
	m.initOnce.Do(func() { m.cond.L = &m.mu })
}

// lock acquires the mutex for id, blocking if it is held by a
// different caller. Calling it again with the same id that already
// holds the lock just increments the depth counter.
func (m *reentrantMutex) lock(id callerID) {
	m.init()
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.held && m.owner != id {
		m.cond.Wait()
	}
	if m.held && m.owner == id {
		m.depth++
		return
	}
	m.held = true
	m.owner = id
	m.depth = 1
}

// unlock releases one level of the caller's hold; the mutex becomes
// free to other callers only once depth reaches zero.
func (m *reentrantMutex) unlock(id callerID) {
	m.init()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held || m.owner != id {
		panic("jingle: reentrantMutex unlock by non-owner")
	}
	m.depth--
	if m.depth == 0 {
		m.held = false
		m.owner = 0
		m.cond.Signal()
	}
}
