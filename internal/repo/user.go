package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create сохраняет уже захешированный пароль. Дубликат email -> ErrorConflict.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (model.User, error) {
	u := model.User{PasswordHash: passwordHash}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		RETURNING id, email
	`, email, passwordHash).Scan(&u.ID, &u.Email)
	return u, mapError(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash)

	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}
