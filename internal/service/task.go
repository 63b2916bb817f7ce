package service

import (
	"context"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/events"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

// TaskCache is an optional read-through cache of list results. Generation
// is read before the store query and handed back to Set, which drops the
// write if the user's list was invalidated in between.
type TaskCache interface {
	Get(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, bool)
	Generation(ctx context.Context, userID int64) (int64, bool)
	Set(ctx context.Context, userID, gen int64, filter model.TaskFilter, tasks []model.Task)
	Invalidate(ctx context.Context, userID int64)
}

type EventEmitter interface {
	Emit(e events.TaskEvent)
}

type TaskService struct {
	repo   repo.TaskRepository
	cache  TaskCache
	events EventEmitter
}

type Option func(*TaskService)

func WithCache(c TaskCache) Option {
	return func(s *TaskService) { s.cache = c }
}

func WithEvents(e EventEmitter) Option {
	return func(s *TaskService) { s.events = e }
}

func NewTaskService(repo repo.TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	var (
		gen      int64
		cachable bool
	)
	if s.cache != nil {
		if tasks, ok := s.cache.Get(ctx, userID, filter); ok {
			return tasks, nil
		}
		gen, cachable = s.cache.Generation(ctx, userID)
	}

	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	if cachable {
		s.cache.Set(ctx, userID, gen, filter, tasks)
	}
	return tasks, nil
}

// Create всегда создает задачу с приоритетом Normal
func (s *TaskService) Create(ctx context.Context, userID int64, text string) (model.Task, error) {
	if strings.TrimSpace(text) == "" {
		return model.Task{}, ErrValidation
	}

	task, err := s.repo.Create(ctx, model.Task{UserID: userID, Text: text})
	if err != nil {
		return task, err
	}

	s.changed(ctx, events.TaskCreated, task.ID, userID)
	return task, nil
}

// Update проверяет владельца, затем меняет только переданные поля.
// Проверка и запись не атомарны.
func (s *TaskService) Update(ctx context.Context, id, userID int64, patch model.TaskPatch) error {
	patch = normalizePatch(patch)

	if _, err := s.repo.GetOwned(ctx, id, userID); err != nil {
		return err
	}

	if patch.Empty() {
		return nil
	}

	if err := s.repo.Update(ctx, id, userID, patch); err != nil {
		return err
	}

	s.changed(ctx, events.TaskUpdated, id, userID)
	return nil
}

// Delete удаляет только задачу вызывающего пользователя
func (s *TaskService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.changed(ctx, events.TaskDeleted, id, userID)
	return nil
}

func (s *TaskService) changed(ctx context.Context, typ string, taskID, userID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	if s.events != nil {
		s.events.Emit(events.NewTaskEvent(typ, taskID, userID))
	}
}

// normalizePatch treats empty values as absent, so "" never blanks a field.
func normalizePatch(p model.TaskPatch) model.TaskPatch {
	if p.Text != nil && *p.Text == "" {
		p.Text = nil
	}
	if p.Priority != nil && *p.Priority == "" {
		p.Priority = nil
	}
	return p
}
