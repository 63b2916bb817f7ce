package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorConflict    = errors.New("conflict")
	ErrorUnknownUser = errors.New("unknown user") // FK на users нарушен
)

var taskColumns = []string{"id", "user_id", "text", "priority"}

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (text, priority, user_id)
		VALUES ($1, 'Normal', $2)
		RETURNING id, user_id, text, priority
	`, t.Text, t.UserID).Scan(
		&t.ID, &t.UserID, &t.Text, &t.Priority,
	)
	return t, mapError(err)
}

func (r *TaskRepo) GetOwned(ctx context.Context, id, userID int64) (model.Task, error) {
	sql, args := newSelect("tasks", taskColumns...).
		Where("id", "=", id).
		Where("user_id", "=", userID).
		Build()

	var t model.Task
	err := r.pool.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.Text, &t.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// List отдает задачи пользователя, новые первыми
func (r *TaskRepo) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	sql, args := taskListQuery(userID, filter).Build()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Priority); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func taskListQuery(userID int64, filter model.TaskFilter) *selectQuery {
	q := newSelect("tasks", taskColumns...).Where("user_id", "=", userID)
	if filter.Search != "" {
		q.Where("text", "ILIKE", containsPattern(filter.Search))
	}
	if filter.Priority != "" && filter.Priority != model.PriorityAll {
		q.Where("priority", "=", filter.Priority)
	}
	return q.OrderBy("id DESC")
}

// Update меняет только переданные поля. Пустой патч ничего не делает.
func (r *TaskRepo) Update(ctx context.Context, id, userID int64, patch model.TaskPatch) error {
	sql, args, ok := taskUpdate(id, userID, patch).Build()
	if !ok {
		return nil
	}

	cmd, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func taskUpdate(id, userID int64, patch model.TaskPatch) *updateQuery {
	q := newUpdate("tasks")
	if patch.Priority != nil {
		q.Set("priority", *patch.Priority)
	}
	if patch.Text != nil {
		q.Set("text", *patch.Text)
	}
	return q.Where("id", "=", id).Where("user_id", "=", userID)
}

func (r *TaskRepo) Delete(ctx context.Context, id, userID int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrorConflict
		case "23503": // foreign_key_violation
			return ErrorUnknownUser
		}
	}
	return err
}
