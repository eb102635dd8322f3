// Package queue dispatches alert check runs either through a durable Redis
// queue or, when Redis is unreachable, a direct sequential runner.
package queue

import (
	"context"

	"velocity/internal/domain/alert"
	"velocity/internal/usecase"
)

// Dispatcher hands a batch of alert checks to some execution backend.
// Enqueue reports whether the batch was accepted; a false return tells the
// scheduler to fall back to another dispatcher.
type Dispatcher interface {
	Enqueue(ctx context.Context, tasks []alert.CheckTask) bool
}

// Processor is the slice of the alert usecase the workers invoke.
type Processor interface {
	Process(ctx context.Context, task alert.CheckTask) (usecase.ProcessResult, error)
}
