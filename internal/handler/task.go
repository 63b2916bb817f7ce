package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/middleware"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

const (
	msgUpdated = "Updated Successfully"
	msgDeleted = "Deleted"
)

type TaskService interface {
	List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error)
	Create(ctx context.Context, userID int64, text string) (model.Task, error)
	Update(ctx context.Context, id, userID int64, patch model.TaskPatch) error
	Delete(ctx context.Context, id, userID int64) error
}

type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

type createTaskRequest struct {
	Text string `json:"text"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	filter := model.TaskFilter{
		Search:   r.URL.Query().Get("search"),
		Priority: r.URL.Query().Get("priority"),
	}

	tasks, err := h.service.List(r.Context(), id.UserID, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Create(r.Context(), id.UserID, req.Text)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.service.Update(r.Context(), taskID, id.UserID, patch); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, msgUpdated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), taskID, id.UserID); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, msgDeleted)
}

// identity достает пользователя, положенного middleware.Authenticate
func (h *TaskHandler) identity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
	}
	return id, ok
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found")
	case errors.Is(err, repo.ErrorUnknownUser):
		respond.Error(w, r, http.StatusUnauthorized, "user no longer exists")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
