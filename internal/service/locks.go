package service

import "sync"

// Locks hands out one RWMutex per board. Different boards never contend.
type Locks struct {
	mu     sync.Mutex
	boards map[string]*sync.RWMutex
}

func NewLocks() *Locks {
	return &Locks{boards: make(map[string]*sync.RWMutex)}
}

func (l *Locks) get(id string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.boards[id]
	if !ok {
		m = &sync.RWMutex{}
		l.boards[id] = m
	}
	return m
}

// Lock takes the exclusive lock of a board and returns its release func.
func (l *Locks) Lock(id string) func() {
	m := l.get(id)
	m.Lock()
	return m.Unlock
}

// RLock takes the shared lock of a board and returns its release func.
func (l *Locks) RLock(id string) func() {
	m := l.get(id)
	m.RLock()
	return m.RUnlock
}
