package repo

import (
	"context"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Task, error)
	ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	Share(ctx context.Context, s model.SharedTask) (model.SharedTask, error)
	GetSharedTask(ctx context.Context, id int64) (model.SharedTask, error)
	SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, key string) (int64, error)
}

// UserRepository только чтение, пользователи заводятся миграцией
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}
