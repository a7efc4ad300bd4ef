package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		pool: pool,
	}
}

func (r *UserRepo) GetUser(ctx context.Context, id int64) (model.User, error) {
	return r.getBy(ctx, `SELECT id, name, email, created_at FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, `SELECT id, name, email, created_at FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getBy(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}
