package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/task-tracker/internal/events"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetOwned(ctx context.Context, id, userID int64) (model.Task, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, userID, filter)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id, userID int64, patch model.TaskPatch) error {
	args := m.Called(ctx, id, userID, patch)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, email, passwordHash string) (model.User, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID int64, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

type MockTaskCache struct {
	mock.Mock
}

func (m *MockTaskCache) Get(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, bool) {
	args := m.Called(ctx, userID, filter)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Bool(1)
}

func (m *MockTaskCache) Generation(ctx context.Context, userID int64) (int64, bool) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Bool(1)
}

func (m *MockTaskCache) Set(ctx context.Context, userID, gen int64, filter model.TaskFilter, tasks []model.Task) {
	m.Called(ctx, userID, gen, filter, tasks)
}

func (m *MockTaskCache) Invalidate(ctx context.Context, userID int64) {
	m.Called(ctx, userID)
}

type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) Emit(e events.TaskEvent) {
	m.Called(e)
}
