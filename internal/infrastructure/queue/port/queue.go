package port

import (
	"context"
	"errors"
	"time"
)

// ErrSkipRetry, wrapped into a handler error, marks the task as permanently
// failed so the adapter does not schedule another attempt.
var ErrSkipRetry = errors.New("queue: skip retry")

// Task is a typed job with an opaque payload; producers and handlers agree on the encoding.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error is retried per adapter policy
// unless it wraps ErrSkipRetry.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption tunes delivery of one task. Zero fields keep the backend default.
type EnqueueOption struct {
	Queue    string
	MaxRetry int
	// Timeout bounds a single attempt; the handler context is cancelled after it.
	Timeout time.Duration
}

type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server dispatches tasks to registered handlers. Run blocks until ctx is cancelled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
}
