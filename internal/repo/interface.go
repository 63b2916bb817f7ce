package repo

import (
	"context"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	GetOwned(ctx context.Context, id, userID int64) (model.Task, error)
	List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id, userID int64, patch model.TaskPatch) error
	Delete(ctx context.Context, id, userID int64) error
}

// UserRepository хранит учетные записи
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}
