package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error)
}

type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

func NewAuthHandler(srv AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: srv,
		logger:  logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respond.Error(w, r, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, repo.ErrorConflict):
			respond.Error(w, r, http.StatusConflict, "user already exists")
		default:
			h.logger.Error("register failed", zap.Error(err))
			respond.Error(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID))
	respond.JSON(w, r, http.StatusCreated, user)
}

// Login отвечает текстом на ошибки, как того ждут существующие клиенты
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Text(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respond.Text(w, r, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, repo.ErrorNotFound):
			respond.Text(w, r, http.StatusBadRequest, "User not found")
		case errors.Is(err, service.ErrForbidden):
			respond.Text(w, r, http.StatusForbidden, "Invalid Password")
		default:
			h.logger.Error("login failed", zap.Error(err))
			respond.Text(w, r, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	respond.JSON(w, r, http.StatusOK, loginResponse{Token: token, Email: user.Email})
}
