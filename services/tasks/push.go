package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"fixly/models"

	"github.com/hibiken/asynq"
)

const TypePushSend = "push:send"

// NewPushTask wraps one push message as an asynq task.
func NewPushTask(msg models.PushMessage) (*asynq.Task, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePushSend, b), nil
}

// Enqueuer implements notification.PushSender by queueing one task per
// endpoint. Each endpoint fails or retries independently in the worker.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) Send(ctx context.Context, msg models.PushMessage) error {
	task, err := NewPushTask(msg)
	if err != nil {
		return fmt.Errorf("failed to build push task: %w", err)
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue push for endpoint %s: %w", msg.Endpoint, err)
	}
	return nil
}
