// Package events defines task change notifications and publishes them to
// RabbitMQ.
package events

import (
	"context"
	"time"
)

const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent is emitted after a task change has been committed.
type TaskEvent struct {
	Type   string    `json:"type"`
	TaskID int64     `json:"task_id"`
	UserID int64     `json:"user_id"`
	At     time.Time `json:"at"`
}

func NewTaskEvent(typ string, taskID, userID int64) TaskEvent {
	return TaskEvent{Type: typ, TaskID: taskID, UserID: userID, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e TaskEvent) error
}
