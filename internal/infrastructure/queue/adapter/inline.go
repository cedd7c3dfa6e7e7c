package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/port"
)

// Inline is a Client and Server in one that runs handlers synchronously inside Enqueue.
// It serves single-process deployments without Redis. Retries are attempted in place.
// A task carrying a TaskID runs at most once successfully per process.
type Inline struct {
	mu       sync.RWMutex
	handlers map[string]port.Handler
	taken    map[string]struct{}
	logger   *slog.Logger
}

func NewInline(logger *slog.Logger) *Inline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inline{handlers: make(map[string]port.Handler), taken: make(map[string]struct{}), logger: logger}
}

var (
	_ port.Client = (*Inline)(nil)
	_ port.Server = (*Inline)(nil)
)

func (q *Inline) Register(taskType string, h port.Handler) {
	q.mu.Lock()
	q.handlers[taskType] = h
	q.mu.Unlock()
}

func (q *Inline) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	q.mu.RLock()
	h, ok := q.handlers[t.Type]
	q.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("inline queue: no handler for %q", t.Type)
	}
	var op port.EnqueueOption
	if len(opts) > 0 {
		op = opts[0]
	}
	id := uuid.NewString()
	if op.TaskID != "" {
		id = op.TaskID
		if !q.take(id) {
			return "", nil
		}
	}

	err := q.run(ctx, h, t, 1+max(op.MaxRetry, 0))
	if err != nil && op.TaskID != "" {
		q.release(id)
	}
	return id, err
}

func (q *Inline) run(ctx context.Context, h port.Handler, t port.Task, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = h(ctx, t); err == nil {
			return nil
		}
		if errors.Is(err, port.ErrSkipRetry) || ctx.Err() != nil {
			break
		}
		q.logger.Warn("task_retry", "type", t.Type, "attempt", i+1, "err", err)
	}
	return err
}

// take claims a task id and reports false when it is running or already done.
func (q *Inline) take(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.taken[id]; ok {
		return false
	}
	q.taken[id] = struct{}{}
	return true
}

// release frees a failed task id so a later enqueue can try again.
func (q *Inline) release(id string) {
	q.mu.Lock()
	delete(q.taken, id)
	q.mu.Unlock()
}

func (q *Inline) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (q *Inline) Stop(context.Context) error { return nil }
func (q *Inline) Close() error               { return nil }
