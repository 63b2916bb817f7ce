package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/events"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

func strPtr(s string) *string { return &s }

func eventOf(typ string, taskID, userID int64) interface{} {
	return mock.MatchedBy(func(e events.TaskEvent) bool {
		return e.Type == typ && e.TaskID == taskID && e.UserID == userID && !e.At.IsZero()
	})
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		setupMock func(*MockTaskRepository, *MockEmitter)
		wantErr   error
	}{
		{
			name: "priority is never taken from the caller",
			text: "Buy cement",
			setupMock: func(m *MockTaskRepository, e *MockEmitter) {
				m.On("Create", mock.Anything, model.Task{UserID: 1, Text: "Buy cement"}).
					Return(model.Task{ID: 10, UserID: 1, Text: "Buy cement", Priority: "Normal"}, nil)
				e.On("Emit", eventOf(events.TaskCreated, 10, 1)).Return()
			},
		},
		{
			name:      "validation error - empty text",
			text:      "   ",
			setupMock: func(m *MockTaskRepository, e *MockEmitter) {},
			wantErr:   ErrValidation,
		},
		{
			name: "store failure emits nothing",
			text: "Buy cement",
			setupMock: func(m *MockTaskRepository, e *MockEmitter) {
				m.On("Create", mock.Anything, mock.Anything).Return(model.Task{}, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			emitter := new(MockEmitter)
			tt.setupMock(mockRepo, emitter)

			service := NewTaskService(mockRepo, WithEvents(emitter))
			task, err := service.Create(context.Background(), 1, tt.text)

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.PriorityNormal, task.Priority)
			}
			mockRepo.AssertExpectations(t)
			emitter.AssertExpectations(t)
		})
	}
}

func TestTaskService_List(t *testing.T) {
	filter := model.TaskFilter{Search: "cement", Priority: model.PriorityAll}
	rows := []model.Task{{ID: 2, UserID: 1, Text: "Buy cement", Priority: "Normal"}}

	t.Run("without cache", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("List", mock.Anything, int64(1), filter).Return(rows, nil)

		got, err := NewTaskService(mockRepo).List(context.Background(), 1, filter)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		cache := new(MockTaskCache)
		cache.On("Get", mock.Anything, int64(1), filter).Return(nil, false)
		cache.On("Generation", mock.Anything, int64(1)).Return(int64(3), true)
		mockRepo.On("List", mock.Anything, int64(1), filter).Return(rows, nil)
		cache.On("Set", mock.Anything, int64(1), int64(3), filter, rows).Return()

		got, err := NewTaskService(mockRepo, WithCache(cache)).List(context.Background(), 1, filter)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		mockRepo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips store", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		cache := new(MockTaskCache)
		cache.On("Get", mock.Anything, int64(1), filter).Return(rows, true)

		got, err := NewTaskService(mockRepo, WithCache(cache)).List(context.Background(), 1, filter)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store error is not cached", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		cache := new(MockTaskCache)
		cache.On("Get", mock.Anything, int64(1), filter).Return(nil, false)
		cache.On("Generation", mock.Anything, int64(1)).Return(int64(0), true)
		mockRepo.On("List", mock.Anything, int64(1), filter).Return(nil, errors.New("db down"))

		_, err := NewTaskService(mockRepo, WithCache(cache)).List(context.Background(), 1, filter)
		assert.Error(t, err)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreadable generation skips fill", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		cache := new(MockTaskCache)
		cache.On("Get", mock.Anything, int64(1), filter).Return(nil, false)
		cache.On("Generation", mock.Anything, int64(1)).Return(int64(0), false)
		mockRepo.On("List", mock.Anything, int64(1), filter).Return(rows, nil)

		got, err := NewTaskService(mockRepo, WithCache(cache)).List(context.Background(), 1, filter)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_Update(t *testing.T) {
	owned := model.Task{ID: 5, UserID: 1, Text: "Buy cement", Priority: "Normal"}

	tests := []struct {
		name      string
		patch     model.TaskPatch
		setupMock func(*MockTaskRepository, *MockTaskCache, *MockEmitter)
		wantErr   error
	}{
		{
			name:  "priority only",
			patch: model.TaskPatch{Priority: strPtr("High")},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(owned, nil)
				m.On("Update", mock.Anything, int64(5), int64(1), model.TaskPatch{Priority: strPtr("High")}).Return(nil)
				c.On("Invalidate", mock.Anything, int64(1)).Return()
				e.On("Emit", eventOf(events.TaskUpdated, 5, 1)).Return()
			},
		},
		{
			name:  "empty text is treated as absent",
			patch: model.TaskPatch{Text: strPtr(""), Priority: strPtr("High")},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(owned, nil)
				m.On("Update", mock.Anything, int64(5), int64(1), model.TaskPatch{Priority: strPtr("High")}).Return(nil)
				c.On("Invalidate", mock.Anything, int64(1)).Return()
				e.On("Emit", mock.Anything).Return()
			},
		},
		{
			name:  "whitespace text is kept as sent",
			patch: model.TaskPatch{Text: strPtr(" ")},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(owned, nil)
				m.On("Update", mock.Anything, int64(5), int64(1), model.TaskPatch{Text: strPtr(" ")}).Return(nil)
				c.On("Invalidate", mock.Anything, int64(1)).Return()
				e.On("Emit", mock.Anything).Return()
			},
		},
		{
			name:  "empty patch still checks ownership",
			patch: model.TaskPatch{},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(owned, nil)
			},
		},
		{
			name:  "not owned",
			patch: model.TaskPatch{Priority: strPtr("High")},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(model.Task{}, repo.ErrorNotFound)
			},
			wantErr: repo.ErrorNotFound,
		},
		{
			name:  "deleted between check and write",
			patch: model.TaskPatch{Text: strPtr("Buy sand")},
			setupMock: func(m *MockTaskRepository, c *MockTaskCache, e *MockEmitter) {
				m.On("GetOwned", mock.Anything, int64(5), int64(1)).Return(owned, nil)
				m.On("Update", mock.Anything, int64(5), int64(1), mock.Anything).Return(repo.ErrorNotFound)
			},
			wantErr: repo.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			cache := new(MockTaskCache)
			emitter := new(MockEmitter)
			tt.setupMock(mockRepo, cache, emitter)

			service := NewTaskService(mockRepo, WithCache(cache), WithEvents(emitter))
			err := service.Update(context.Background(), 5, 1, tt.patch)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
			cache.AssertExpectations(t)
			emitter.AssertExpectations(t)
		})
	}
}

func TestTaskService_Delete(t *testing.T) {
	t.Run("owned task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		cache := new(MockTaskCache)
		emitter := new(MockEmitter)
		mockRepo.On("Delete", mock.Anything, int64(5), int64(1)).Return(nil)
		cache.On("Invalidate", mock.Anything, int64(1)).Return()
		emitter.On("Emit", eventOf(events.TaskDeleted, 5, 1)).Return()

		err := NewTaskService(mockRepo, WithCache(cache), WithEvents(emitter)).Delete(context.Background(), 5, 1)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		cache.AssertExpectations(t)
		emitter.AssertExpectations(t)
	})

	t.Run("someone else's task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(5), int64(2)).Return(repo.ErrorNotFound)

		err := NewTaskService(mockRepo).Delete(context.Background(), 5, 2)
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})
}
