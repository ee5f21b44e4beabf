package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/shared"
)

// Client enqueue background task, queue được chọn theo shared.TaskQueues
type Client struct {
	client *asynq.Client
}

func NewClient(opt asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

// NewTask build task với payload JSON và option mặc định theo loại task
func NewTask(taskType string, payload interface{}) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	queue, ok := shared.TaskQueues[taskType]
	if !ok {
		queue = shared.QueueDefault
	}

	opts := []asynq.Option{asynq.Queue(queue), asynq.MaxRetry(5), asynq.Timeout(5 * time.Minute)}
	if taskType == shared.TypeDriveImport {
		opts = append(opts, asynq.MaxRetry(1), asynq.Timeout(30*time.Minute))
	}

	return asynq.NewTask(taskType, data, opts...), nil
}

func (c *Client) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	task, err := NewTask(taskType, payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

// EnqueueAt schedule task chạy tại thời điểm at (chapter hẹn giờ publish)
func (c *Client) EnqueueAt(ctx context.Context, taskType string, payload interface{}, at time.Time) error {
	task, err := NewTask(taskType, payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.ProcessAt(at)); err != nil {
		return fmt.Errorf("enqueue %s at %s: %w", taskType, at.Format(time.RFC3339), err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
