// Package lock provides the per-account mutual exclusion used by the
// posting engine. One Manager is created at service start and lives for
// the whole process; it serializes postings that share accounts while
// leaving disjoint postings fully parallel. The scope is a single
// process — multi-instance deployments need an external lock service in
// front of this.
package lock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kitabu/ledger/internal/domain"
)

// DefaultAcquireTimeout bounds how long one posting waits for a
// contended account before giving up with a retryable error.
const DefaultAcquireTimeout = 30 * time.Second

// Manager maps account IDs to exclusive locks. Locks are created on
// first reference and never evicted, so memory grows with the lifetime
// cardinality of accounts touched.
type Manager struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	timeout time.Duration
}

// NewManager creates a Manager with the given acquire timeout. A zero
// or negative timeout falls back to DefaultAcquireTimeout.
func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	return &Manager{
		locks:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (m *Manager) lockFor(accountID string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[accountID]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[accountID] = l
	}

	return l
}

// AcquireAll takes the locks for every given account ID, sorted
// ascending so that any two postings sharing accounts always contend in
// the same order and cannot deadlock. On success it returns a release
// function that must be called on every exit path; calling it more than
// once is safe. If any single acquisition exceeds the timeout (or ctx
// is cancelled), everything already held is released and a
// domain.ErrLockTimeout is returned with nothing written.
func (m *Manager) AcquireAll(ctx context.Context, accountIDs []string) (func(), error) {
	ids := make([]string, len(accountIDs))
	copy(ids, accountIDs)
	sort.Strings(ids)

	acquired := make([]chan struct{}, 0, len(ids))

	releaseAll := func() {
		for _, l := range acquired {
			<-l
		}
		acquired = nil
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	for _, id := range ids {
		l := m.lockFor(id)

		select {
		case l <- struct{}{}:
			acquired = append(acquired, l)
		case <-timer.C:
			releaseAll()
			return nil, fmt.Errorf("%w: account %s", domain.ErrLockTimeout, id)
		case <-ctx.Done():
			releaseAll()
			return nil, fmt.Errorf("%w: account %s: %v", domain.ErrLockTimeout, id, ctx.Err())
		}
	}

	var once sync.Once
	release := func() {
		once.Do(releaseAll)
	}

	return release, nil
}

// Len reports how many account locks exist. Exposed for observability;
// the table only ever grows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.locks)
}
