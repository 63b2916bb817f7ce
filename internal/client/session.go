package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var ErrNotLoggedIn = errors.New("not logged in")

type TaskAPI interface {
	Register(ctx context.Context, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	ListTasks(ctx context.Context, token string, filter model.TaskFilter) ([]model.Task, error)
	CreateTask(ctx context.Context, token, text string) (model.Task, error)
	UpdateTask(ctx context.Context, token string, id int64, patch model.TaskPatch) error
	DeleteTask(ctx context.Context, token string, id int64) error
}

// Session mirrors the server-side task list of the logged in user.
// Mutations are sent first and applied locally only after the server
// confirms them; a failed mutation reloads the list from the server.
type Session struct {
	api    TaskAPI
	store  TokenStore
	logger *zap.Logger

	mu       sync.Mutex
	token    string
	tasks    []model.Task
	search   string
	priority string
}

func NewSession(api TaskAPI, store TokenStore, logger *zap.Logger) (*Session, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{
		api:      api,
		store:    store,
		logger:   logger,
		token:    token,
		tasks:    []model.Task{},
		priority: model.PriorityAll,
	}, nil
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Tasks возвращает копию локального списка
func (s *Session) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Session) Filter() model.TaskFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TaskFilter{Search: s.search, Priority: s.priority}
}

func (s *Session) Register(ctx context.Context, email, password string) (model.User, error) {
	return s.api.Register(ctx, email, password)
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.store.Save(res.Token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = res.Token
	s.mu.Unlock()

	return s.Refresh(ctx)
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.tasks = []model.Task{}
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) SetSearch(ctx context.Context, term string) error {
	return s.SetView(ctx, term, s.Filter().Priority)
}

func (s *Session) SetFilter(ctx context.Context, priority string) error {
	return s.SetView(ctx, s.Filter().Search, priority)
}

// SetView меняет поиск и фильтр за один запрос к серверу
func (s *Session) SetView(ctx context.Context, search, priority string) error {
	if priority == "" {
		priority = model.PriorityAll
	}
	s.mu.Lock()
	s.search = search
	s.priority = priority
	loggedIn := s.token != ""
	s.mu.Unlock()

	if !loggedIn {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh replaces the local list with the server's. An auth failure logs
// the session out.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	filter := model.TaskFilter{Search: s.search, Priority: s.priority}
	s.mu.Unlock()

	if token == "" {
		return ErrNotLoggedIn
	}

	tasks, err := s.api.ListTasks(ctx, token, filter)
	if errors.Is(err, ErrUnauthorized) {
		s.logger.Info("session rejected by server, logging out")
		if cerr := s.Logout(); cerr != nil {
			s.logger.Warn("failed to clear token", zap.Error(cerr))
		}
		return err
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

func (s *Session) Add(ctx context.Context, text string) (model.Task, error) {
	var created model.Task
	if strings.TrimSpace(text) == "" {
		return created, nil
	}

	err := s.run(ctx, command{
		name: "add",
		send: func(ctx context.Context, token string) (err error) {
			created, err = s.api.CreateTask(ctx, token, text)
			return err
		},
		apply: func(tasks []model.Task) []model.Task {
			return append([]model.Task{created}, tasks...)
		},
	})
	return created, err
}

func (s *Session) Edit(ctx context.Context, id int64, text string) error {
	return s.Update(ctx, id, model.TaskPatch{Text: &text})
}

// TogglePriority переключает Normal <-> High по локальной копии задачи
func (s *Session) TogglePriority(ctx context.Context, id int64) error {
	task, ok := s.find(id)
	if !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	next := model.PriorityHigh
	if task.Priority == model.PriorityHigh {
		next = model.PriorityNormal
	}
	return s.Update(ctx, id, model.TaskPatch{Priority: &next})
}

func (s *Session) Update(ctx context.Context, id int64, patch model.TaskPatch) error {
	return s.run(ctx, command{
		name: "update",
		send: func(ctx context.Context, token string) error {
			return s.api.UpdateTask(ctx, token, id, patch)
		},
		apply: func(tasks []model.Task) []model.Task {
			for i := range tasks {
				if tasks[i].ID != id {
					continue
				}
				if patch.Text != nil {
					tasks[i].Text = *patch.Text
				}
				if patch.Priority != nil {
					tasks[i].Priority = *patch.Priority
				}
			}
			return tasks
		},
	})
}

func (s *Session) Remove(ctx context.Context, id int64) error {
	return s.run(ctx, command{
		name: "remove",
		send: func(ctx context.Context, token string) error {
			return s.api.DeleteTask(ctx, token, id)
		},
		apply: func(tasks []model.Task) []model.Task {
			out := tasks[:0]
			for _, t := range tasks {
				if t.ID != id {
					out = append(out, t)
				}
			}
			return out
		},
	})
}

type command struct {
	name  string
	send  func(ctx context.Context, token string) error
	apply func(tasks []model.Task) []model.Task
}

func (s *Session) run(ctx context.Context, c command) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return ErrNotLoggedIn
	}

	if err := c.send(ctx, token); err != nil {
		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Warn("refetch after failed command", zap.String("command", c.name), zap.Error(rerr))
		}
		return fmt.Errorf("%s: %w", c.name, err)
	}

	s.mu.Lock()
	s.tasks = c.apply(s.tasks)
	s.mu.Unlock()
	return nil
}

func (s *Session) find(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
