package services

import (
	"sync"

	"github.com/google/uuid"
)

// AccountLocker serializes balance-mutating operations per account. Two
// concurrent trades (or a trade and a spin) on the same account never
// interleave their read-modify-write; different accounts proceed in parallel.
type AccountLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewAccountLocker() *AccountLocker {
	return &AccountLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given account, creating it on first use.
func (l *AccountLocker) Lock(accountID uuid.UUID) {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
}

// Unlock releases the mutex for the given account.
func (l *AccountLocker) Unlock(accountID uuid.UUID) {
	l.mu.Lock()
	m := l.locks[accountID]
	l.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
