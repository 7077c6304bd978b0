package lending

import (
	"sync"

	"github.com/google/uuid"
)

// loanLocks serializes mutations per loan identifier. Commands on the same
// loan queue up behind one another while commands on different loans run in
// parallel. The optimistic version check on save still applies underneath,
// covering multi-instance deployments where an in-process lock is not enough.
type loanLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*loanLock
}

type loanLock struct {
	mu   sync.Mutex
	refs int
}

func newLoanLocks() *loanLocks {
	return &loanLocks{locks: make(map[uuid.UUID]*loanLock)}
}

// Acquire blocks until the lock for the given loan is held and returns the
// release function. Lock entries are reference counted and removed once the
// last holder releases, so the map does not grow with loan count.
func (l *loanLocks) Acquire(loanID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[loanID]
	if !ok {
		entry = &loanLock{}
		l.locks[loanID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, loanID)
		}
		l.mu.Unlock()
	}
}
