package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeTaskReminder JobType = "task_reminder"
	JobTypeCleanup      JobType = "cleanup"
)

type Job struct {
	ID        string            `json:"id"`
	Type      JobType           `json:"type"`
	Payload   map[string]string `json:"payload"`
	Attempts  int               `json:"attempts"`
	MaxTries  int               `json:"max_tries"`
	CreatedAt time.Time         `json:"created_at"`
	ProcessAt time.Time         `json:"process_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

// Worker drains redis-list queues and dispatches jobs to registered
// handlers. Failed jobs are retried with exponential backoff and moved to
// the dead queue after MaxTries attempts.
type Worker struct {
	client   *redis.Client
	logger   *slog.Logger
	handlers map[JobType]JobHandler
	queues   []string
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

const (
	retryQueue = "taskflow:jobs:retry"
	deadQueue  = "taskflow:jobs:dead"
)

func queueKey(name string) string {
	return "taskflow:jobs:" + name
}

func NewWorker(client *redis.Client, queues []string, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]string, 0, len(queues)+1)
	for _, q := range queues {
		keys = append(keys, queueKey(q))
	}
	keys = append(keys, retryQueue)

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client:   client,
		logger:   logger,
		handlers: make(map[JobType]JobHandler),
		queues:   keys,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}
	w.logger.Info("starting worker", slog.Int("concurrency", concurrency))

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.cancel()
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.processNext(); err != nil {
				w.logger.Error("job processing failed", slog.String("error", err.Error()))
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNext() error {
	result, err := w.client.BLPop(w.ctx, 5*time.Second, w.queues...).Result()
	if err != nil {
		if err == redis.Nil || w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to pop job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("malformed pop result")
	}

	queue, raw := result[0], result[1]

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	// Not due yet; put it back.
	if time.Now().Before(job.ProcessAt) {
		return w.push(queue, &job)
	}

	return w.execute(&job)
}

func (w *Worker) execute(job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for job type %q", job.Type)
	}

	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	if err := handler(ctx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			w.logger.Warn("job failed, scheduling retry",
				slog.String("job_id", job.ID),
				slog.Int("attempt", job.Attempts),
				slog.String("error", err.Error()))
			job.ProcessAt = time.Now().Add(time.Duration(1<<job.Attempts) * time.Minute)
			return w.push(retryQueue, job)
		}

		w.logger.Error("job failed permanently",
			slog.String("job_id", job.ID),
			slog.Int("attempts", job.Attempts),
			slog.String("error", err.Error()))
		return w.bury(job, err)
	}

	w.logger.Info("job completed", slog.String("job_id", job.ID), slog.String("type", string(job.Type)))
	return nil
}

func (w *Worker) push(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return w.client.RPush(w.ctx, queue, data).Err()
}

func (w *Worker) bury(job *Job, jobErr error) error {
	dead := map[string]interface{}{
		"job":       job,
		"error":     jobErr.Error(),
		"failed_at": time.Now(),
	}
	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead job: %w", err)
	}
	return w.client.RPush(w.ctx, deadQueue, data).Err()
}

// JobQueue is the producer side.
type JobQueue struct {
	client *redis.Client
}

func NewJobQueue(client *redis.Client) *JobQueue {
	return &JobQueue{client: client}
}

func (q *JobQueue) Enqueue(queue string, jobType JobType, payload map[string]string) error {
	return q.EnqueueAt(queue, jobType, payload, time.Now())
}

func (q *JobQueue) EnqueueAt(queue string, jobType JobType, payload map[string]string, processAt time.Time) error {
	job := Job{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Type:      jobType,
		Payload:   payload,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: processAt,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return q.client.RPush(ctx, queueKey(queue), data).Err()
}

func (q *JobQueue) Size(queue string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return q.client.LLen(ctx, queueKey(queue)).Result()
}
