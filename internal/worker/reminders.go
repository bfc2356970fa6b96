package worker

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/models"
)

// ReminderScanner periodically finds unfinished tasks whose due date falls
// inside the lookahead window and enqueues a reminder job for each.
type ReminderScanner struct {
	db        *gorm.DB
	queue     *JobQueue
	logger    *slog.Logger
	interval  time.Duration
	lookahead time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewReminderScanner(db *gorm.DB, queue *JobQueue, interval time.Duration, logger *slog.Logger) *ReminderScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderScanner{
		db:        db,
		queue:     queue,
		logger:    logger,
		interval:  interval,
		lookahead: time.Hour,
		done:      make(chan struct{}),
	}
}

func (s *ReminderScanner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scan()
			}
		}
	}()
}

func (s *ReminderScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *ReminderScanner) scan() {
	now := time.Now()
	var tasks []models.Task
	err := s.db.
		Where("due_date IS NOT NULL AND due_date > ? AND due_date <= ? AND status != ?",
			now, now.Add(s.lookahead), models.StatusDone).
		Find(&tasks).Error
	if err != nil {
		s.logger.Error("reminder scan failed", slog.String("error", err.Error()))
		return
	}

	for _, task := range tasks {
		payload := map[string]string{
			"task_id": task.ID.String(),
			"title":   task.Title,
			"due_at":  task.DueDate.UTC().Format(time.RFC3339),
		}
		if err := s.queue.Enqueue("reminders", JobTypeTaskReminder, payload); err != nil {
			s.logger.Error("failed to enqueue reminder",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}

// LogReminderHandler is the default reminder consumer; deployments with a
// mail gateway replace it.
func LogReminderHandler(logger *slog.Logger) JobHandler {
	return func(ctx context.Context, job *Job) error {
		logger.Info("task due soon",
			slog.String("task_id", job.Payload["task_id"]),
			slog.String("title", job.Payload["title"]),
			slog.String("due_at", job.Payload["due_at"]))
		return nil
	}
}
