package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type retryTask struct {
	name     string
	attempts int
	fn       func(context.Context) error
}

// RetryQueue holds failed non-blocking pipeline steps and re-attempts
// them on an interval. Tasks stay queued until they succeed; nothing
// here ever blocks the customer-facing flow.
type RetryQueue struct {
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	tasks []*retryTask
}

func NewRetryQueue(interval time.Duration, logger *zap.Logger) *RetryQueue {
	return &RetryQueue{interval: interval, logger: logger}
}

func (q *RetryQueue) Enqueue(name string, fn func(context.Context) error) {
	q.mu.Lock()
	q.tasks = append(q.tasks, &retryTask{name: name, fn: fn})
	q.mu.Unlock()
	q.logger.Info("queued for retry", zap.String("task", name))
}

func (q *RetryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Flush runs every queued task once, dropping the ones that succeed.
func (q *RetryQueue) Flush(ctx context.Context) {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var remaining []*retryTask
	for _, t := range tasks {
		t.attempts++
		if err := t.fn(ctx); err != nil {
			q.logger.Warn("retry failed",
				zap.String("task", t.name),
				zap.Int("attempts", t.attempts),
				zap.Error(err))
			remaining = append(remaining, t)
			continue
		}
		q.logger.Info("retry succeeded",
			zap.String("task", t.name),
			zap.Int("attempts", t.attempts))
	}

	if len(remaining) > 0 {
		q.mu.Lock()
		q.tasks = append(remaining, q.tasks...)
		q.mu.Unlock()
	}
}

func (q *RetryQueue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Flush(ctx)
		}
	}
}
