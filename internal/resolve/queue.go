package resolve

import (
	"context"
	"sync"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// workQueue is a multi-producer, single-consumer queue with an outstanding-task counter.
//
// The consumer claims an item and its task slot in one step, and a task hands back its
// discovered work and its slot in one step, so the queue is drained exactly when it is
// empty and no task is outstanding.
type workQueue struct {
	mu          sync.Mutex
	items       []models.ModRecord
	outstanding int
	wake        chan struct{}
}

func newWorkQueue(seed []models.ModRecord) *workQueue {
	return &workQueue{
		items: append([]models.ModRecord(nil), seed...),
		wake:  make(chan struct{}, 1),
	}
}

// take blocks until an item is available or the queue is drained.
// A returned item already holds a task slot that must be given back with release.
func (q *workQueue) take(ctx context.Context) (models.ModRecord, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return models.ModRecord{}, false, err
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.outstanding++
			q.mu.Unlock()
			return item, true, nil
		}
		drained := q.outstanding == 0
		q.mu.Unlock()

		if drained {
			return models.ModRecord{}, false, nil
		}

		select {
		case <-q.wake:
		case <-ctx.Done():
			return models.ModRecord{}, false, ctx.Err()
		}
	}
}

// release returns a task slot after queueing the work the task discovered
func (q *workQueue) release(discovered ...models.ModRecord) {
	q.mu.Lock()
	q.items = append(q.items, discovered...)
	q.outstanding--
	q.mu.Unlock()

	q.signal()
}

func (q *workQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *workQueue) pending() (items, outstanding int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), q.outstanding
}
