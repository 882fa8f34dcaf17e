package worker

import "sync"

// inflightTracker records the jobs this process currently believes it owns.
// It bounds dispatch and prevents the poll loop from re-dispatching a job
// that is still running locally after the ledger returns it again.
type inflightTracker struct {
	mu   sync.Mutex
	jobs map[string]struct{}
	max  int
}

func newInflightTracker(max int) *inflightTracker {
	if max < 1 {
		max = 1
	}
	return &inflightTracker{jobs: make(map[string]struct{}), max: max}
}

// TryReserve records the job as in flight if capacity remains and the job is
// not already tracked. It reports whether the reservation was taken.
func (t *inflightTracker) TryReserve(jobID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.jobs) >= t.max {
		return false
	}
	if _, exists := t.jobs[jobID]; exists {
		return false
	}
	t.jobs[jobID] = struct{}{}
	return true
}

// Release forgets a job, freeing one slot.
func (t *inflightTracker) Release(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, jobID)
}

// Size returns the number of jobs currently tracked.
func (t *inflightTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// Capacity returns how many more jobs may be dispatched right now.
func (t *inflightTracker) Capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	remaining := t.max - len(t.jobs)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tracked reports whether the job is currently in flight locally.
func (t *inflightTracker) Tracked(jobID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, exists := t.jobs[jobID]
	return exists
}
