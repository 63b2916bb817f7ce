// Package client talks to the task tracker API and mirrors the caller's task
// list locally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("api: %d %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	return nil
}

type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (a *API) Register(ctx context.Context, email, password string) (model.User, error) {
	var user model.User
	err := a.do(ctx, http.MethodPost, "/register", "", credentials(email, password), &user)
	return user, err
}

func (a *API) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := a.do(ctx, http.MethodPost, "/login", "", credentials(email, password), &res)
	return res, err
}

func (a *API) ListTasks(ctx context.Context, token string, filter model.TaskFilter) ([]model.Task, error) {
	q := url.Values{}
	q.Set("search", filter.Search)
	priority := filter.Priority
	if priority == "" {
		priority = model.PriorityAll
	}
	q.Set("priority", priority)

	tasks := []model.Task{}
	err := a.do(ctx, http.MethodGet, "/tasks?"+q.Encode(), token, nil, &tasks)
	return tasks, err
}

func (a *API) CreateTask(ctx context.Context, token, text string) (model.Task, error) {
	var task model.Task
	err := a.do(ctx, http.MethodPost, "/tasks", token, map[string]string{"text": text}, &task)
	return task, err
}

func (a *API) UpdateTask(ctx context.Context, token string, id int64, patch model.TaskPatch) error {
	return a.do(ctx, http.MethodPut, taskPath(id), token, patch, nil)
}

func (a *API) DeleteTask(ctx context.Context, token string, id int64) error {
	return a.do(ctx, http.MethodDelete, taskPath(id), token, nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage понимает {"error": "..."}, JSON строку и обычный текст
func errorMessage(raw []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Error != "" {
		return obj.Error
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
