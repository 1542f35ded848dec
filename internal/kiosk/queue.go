package kiosk

import (
	"fmt"
	"sync"
	"time"
)

// PendingScan is one claim captured while the network was unreachable.
type PendingScan struct {
	Token      string    `json:"token"`
	CapturedAt time.Time `json:"capturedAt"`
	Status     string    `json:"status"`
}

// Store persists offline queue snapshots across kiosk restarts. Load errors
// are treated as an empty queue; Save always writes the full snapshot.
type Store interface {
	Load() ([]PendingScan, error)
	Save(scans []PendingScan) error
}

// Queue buffers claims scanned while the verification service is
// unreachable. It performs no deduplication; replaying a claim queued twice
// yields one accepted and one already_used, which is the server's call.
type Queue struct {
	mu      sync.Mutex
	store   Store
	pending []PendingScan
}

// NewQueue loads the persisted snapshot. A corrupt or missing snapshot
// resets to an empty queue rather than failing the kiosk.
func NewQueue(store Store) *Queue {
	pending, err := store.Load()
	if err != nil {
		pending = nil
	}
	return &Queue{store: store, pending: pending}
}

// Enqueue appends the claim and persists the full queue, overwriting the
// prior snapshot.
func (q *Queue) Enqueue(token string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, PendingScan{
		Token:      token,
		CapturedAt: time.Now(),
		Status:     "pending",
	})
	if err := q.store.Save(q.pending); err != nil {
		return fmt.Errorf("failed to persist offline queue: %w", err)
	}
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain snapshots the queue, clears it so new scans don't interleave with
// the replay, then calls verify for each buffered entry. A verify error
// means the transport failed again: the entry is re-appended to the live
// queue instead of being dropped. The snapshot is persisted once after the
// full pass.
func (q *Queue) Drain(verify func(scan PendingScan) error) error {
	q.mu.Lock()
	snapshot := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, scan := range snapshot {
		if err := verify(scan); err != nil {
			q.mu.Lock()
			q.pending = append(q.pending, scan)
			q.mu.Unlock()
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.store.Save(q.pending); err != nil {
		return fmt.Errorf("failed to persist offline queue: %w", err)
	}
	return nil
}
