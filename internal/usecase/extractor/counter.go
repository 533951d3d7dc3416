package extractor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/metrics"
)

type incrementTask struct {
	id string
	by int64
}

// CounterQueue applies submission-counter increments to both stores in the
// background. Increments are best-effort: a full queue drops the task and a
// store failure is logged, never surfaced to the submitter.
type CounterQueue struct {
	docs   DocumentStore
	index  SearchIndex
	tasks  chan incrementTask
	logger *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewCounterQueue creates a queue with the given buffer size.
func NewCounterQueue(docs DocumentStore, index SearchIndex, size int, logger *zap.Logger) *CounterQueue {
	if size <= 0 {
		size = 1024
	}
	return &CounterQueue{
		docs:   docs,
		index:  index,
		tasks:  make(chan incrementTask, size),
		logger: logger,
	}
}

// Start launches the worker goroutine.
func (q *CounterQueue) Start() {
	q.wg.Add(1)
	go q.run()
}

// Enqueue schedules an increment. Returns false when the queue is full or
// already stopped. The mutex keeps the send from racing Stop's close.
func (q *CounterQueue) Enqueue(id string, by int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.tasks <- incrementTask{id: id, by: by}:
		metrics.CounterQueueDepth.Inc()
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for pending increments to drain.
// Safe to call more than once and concurrently with Enqueue.
func (q *CounterQueue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *CounterQueue) run() {
	defer q.wg.Done()
	for task := range q.tasks {
		metrics.CounterQueueDepth.Dec()
		q.apply(task)
	}
}

func (q *CounterQueue) apply(task incrementTask) {
	ctx := context.Background()
	if err := q.docs.IncrementCounter(ctx, task.id, task.by); err != nil {
		q.logger.Error("Failed to increment document-store counter",
			zap.String("id", task.id),
			zap.Error(err),
		)
	}
	if err := q.index.IncrementCounter(ctx, task.id, task.by); err != nil {
		q.logger.Error("Failed to increment search-index counter",
			zap.String("id", task.id),
			zap.Error(err),
		)
	}
}
