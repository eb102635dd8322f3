package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"velocity/internal/config"
	"velocity/internal/domain/alert"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func testWorker(proc Processor) *Worker {
	return NewWorker(config.RedisConfig{Host: "localhost", Port: "6379"}, config.AlertsConfig{
		QueueConcurrency:  2,
		RequestsPerMinute: 6000, // effectively unthrottled for tests
	}, proc, nil)
}

func TestHandleAlertCheck_ProcessesTask(t *testing.T) {
	proc := &recordingProcessor{}
	w := testWorker(proc)

	task := alert.CheckTask{AlertID: uuid.New(), UserEmail: "dev@example.com"}
	payload, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := w.handleAlertCheck(context.Background(), asynq.NewTask(TypeAlertCheck, payload)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(proc.processed) != 1 || proc.processed[0] != task.AlertID {
		t.Fatalf("task not processed: %v", proc.processed)
	}
}

func TestHandleAlertCheck_MalformedPayloadSkipsRetry(t *testing.T) {
	w := testWorker(&recordingProcessor{})

	err := w.handleAlertCheck(context.Background(), asynq.NewTask(TypeAlertCheck, []byte("{broken")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload must skip retry, got %v", err)
	}
}

func TestHandleAlertCheck_ProcessErrorPropagatesForRetry(t *testing.T) {
	boom := errors.New("rate limited")
	w := testWorker(&recordingProcessor{err: boom})

	payload, _ := json.Marshal(alert.CheckTask{AlertID: uuid.New(), UserEmail: "dev@example.com"})
	err := w.handleAlertCheck(context.Background(), asynq.NewTask(TypeAlertCheck, payload))
	if !errors.Is(err, boom) {
		t.Fatalf("expected process error to propagate, got %v", err)
	}
}
