package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupQueue(t *testing.T) (*redis.Client, *JobQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, NewJobQueue(client)
}

func TestJobQueue_EnqueueAndSize(t *testing.T) {
	_, queue := setupQueue(t)

	if err := queue.Enqueue("reminders", JobTypeTaskReminder, map[string]string{"task_id": "t1"}); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	if err := queue.Enqueue("reminders", JobTypeTaskReminder, map[string]string{"task_id": "t2"}); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	size, err := queue.Size("reminders")
	if err != nil {
		t.Fatalf("Size returned error: %v", err)
	}
	if size != 2 {
		t.Errorf("Expected queue size 2, got %d", size)
	}
}

func TestWorker_ProcessesJob(t *testing.T) {
	client, queue := setupQueue(t)

	var processed atomic.Int32
	var gotTaskID atomic.Value

	w := NewWorker(client, []string{"reminders"}, testLogger())
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		gotTaskID.Store(job.Payload["task_id"])
		processed.Add(1)
		return nil
	})

	if err := queue.Enqueue("reminders", JobTypeTaskReminder, map[string]string{"task_id": "t42"}); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for processed.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if processed.Load() != 1 {
		t.Fatalf("Expected 1 processed job, got %d", processed.Load())
	}
	if got, _ := gotTaskID.Load().(string); got != "t42" {
		t.Errorf("Expected payload task_id t42, got %q", got)
	}
}

func TestWorker_BuriesExhaustedJob(t *testing.T) {
	client, _ := setupQueue(t)

	w := NewWorker(client, []string{"reminders"}, testLogger())
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		return errors.New("handler always fails")
	})

	// Last permitted attempt; the next failure goes to the dead queue.
	job := &Job{
		ID:       "doomed",
		Type:     JobTypeTaskReminder,
		Attempts: 2,
		MaxTries: 3,
	}
	if err := w.push(queueKey("reminders"), job); err != nil {
		t.Fatalf("push returned error: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	ctx := context.Background()
	deadline := time.Now().Add(3 * time.Second)
	var deadLen int64
	for time.Now().Before(deadline) {
		deadLen, _ = client.LLen(ctx, deadQueue).Result()
		if deadLen > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if deadLen != 1 {
		t.Fatalf("Expected 1 buried job, got %d", deadLen)
	}
}

func TestWorker_UnknownTypeReported(t *testing.T) {
	client, queue := setupQueue(t)

	w := NewWorker(client, []string{"reminders"}, testLogger())
	if err := queue.Enqueue("reminders", JobTypeCleanup, nil); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	if err := w.processNext(); err == nil {
		t.Error("Expected an error for an unregistered job type")
	}
}
