package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

type AuthService struct {
	users      repo.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

func NewAuthService(users repo.UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = auth.DefaultBcryptCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Register хеширует пароль и создает пользователя. Повторный email -> repo.ErrorConflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.User{}, ErrValidation
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, email, hash)
}

// Login возвращает токен сессии. Неизвестный email -> repo.ErrorNotFound,
// неверный пароль -> ErrForbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", model.User{}, ErrValidation
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", model.User{}, err
	}

	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", model.User{}, ErrForbidden
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", model.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}
