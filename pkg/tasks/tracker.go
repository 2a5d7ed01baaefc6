package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fycapp/fyc-backend/pkg/cache"
	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
)

// Status is the lifecycle state of one background job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// rank orders statuses so transitions can only move forward.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}

// Task types
const (
	TypeSearch = "competitor_search"
	TypeLookup = "competitor_lookup"
)

// TaskResult is stored once a job completes.
type TaskResult struct {
	SearchID string `json:"search_id"`
	Total    int    `json:"total"`
}

// Task is the tracker record polled by clients.
type Task struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Params    map[string]string `json:"params"`
	Status    Status            `json:"status"`
	Result    *TaskResult       `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

const statusWriteAttempts = 3

// Tracker keeps job lifecycle records in Redis under bounded TTL.
// Every write refreshes the TTL; an expired record is gone, which
// clients must treat as "not found" rather than "failed".
type Tracker struct {
	cache  domain.CacheRepository
	ttl    time.Duration
	logger logger.Logger
}

// NewTracker creates a new task status tracker
func NewTracker(cacheRepo domain.CacheRepository, ttl time.Duration, log logger.Logger) *Tracker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = logger.Default()
	}
	return &Tracker{
		cache:  cacheRepo,
		ttl:    ttl,
		logger: log,
	}
}

func taskKey(id string) string {
	return "task:" + id
}

// Create stores a fresh pending record and returns it.
func (t *Tracker) Create(ctx context.Context, taskType string, params map[string]string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Params:    params,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := t.write(ctx, task); err != nil {
		return nil, fmt.Errorf("failed creating task record: %w", err)
	}

	return task, nil
}

// Get returns the task record, or a NotFound domain error when the key
// is unknown or its TTL has expired.
func (t *Tracker) Get(ctx context.Context, taskID string) (*Task, error) {
	raw, err := t.cache.Get(ctx, taskKey(taskID))
	if err != nil {
		if cache.IsNil(err) {
			return nil, domain.NewNotFoundError("task")
		}
		return nil, fmt.Errorf("failed reading task record: %w", err)
	}

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, fmt.Errorf("failed decoding task record: %w", err)
	}

	return &task, nil
}

// SetStatus transitions a task forward. Terminal states are sticky:
// an attempt to move a completed or failed task is ignored. The write
// is retried up to three times with increasing backoff before the
// failure surfaces to the caller.
func (t *Tracker) SetStatus(ctx context.Context, taskID string, status Status, result *TaskResult, errMsg string) error {
	task, err := t.Get(ctx, taskID)
	if err != nil {
		return err
	}

	if task.Status.Terminal() && status != task.Status {
		t.logger.Warn("ignoring status transition on terminal task",
			"task_id", taskID, "from", task.Status, "to", status)
		return nil
	}
	if status.rank() < task.Status.rank() {
		t.logger.Warn("ignoring backwards status transition",
			"task_id", taskID, "from", task.Status, "to", status)
		return nil
	}

	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	if result != nil {
		task.Result = result
	}
	if errMsg != "" {
		task.Error = errMsg
	}

	var lastErr error
	for attempt := 1; attempt <= statusWriteAttempts; attempt++ {
		lastErr = t.write(ctx, task)
		if lastErr == nil {
			return nil
		}

		t.logger.Warn("task status write failed",
			"task_id", taskID, "status", status, "attempt", attempt, "error", lastErr)

		if attempt < statusWriteAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			case <-ctx.Done():
				return domain.NewStoreWriteError(ctx.Err())
			}
		}
	}

	return domain.NewStoreWriteError(lastErr)
}

func (t *Tracker) write(ctx context.Context, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, taskKey(task.ID), string(data), t.ttl)
}
