package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/taskcentral/internal/model"
	"github.com/BuzzLyutic/taskcentral/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo  repo.TaskRepository
	users repo.UserRepository
}

func NewTaskService(repo repo.TaskRepository, users repo.UserRepository) *TaskService {
	return &TaskService{repo: repo, users: users}
}

func (s *TaskService) Create(ctx context.Context, t model.Task, idempKey string) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Deadline = normalizeDate(t.Deadline)
	if err := s.validate(t); err != nil { // Валидация модели на корректность введенных данных
		return t, err
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	// Создание новой задачи
	resource, err := s.repo.Create(ctx, t)
	if err != nil {
		return resource, err
	}

	// Сохранение нового ключа, ошибка не критична: задача уже создана
	if idempKey != "" {
		_ = s.repo.SaveIdempotencyKey(ctx, idempKey, resource.ID)
	}

	return resource, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TaskService) ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error) {
	return s.repo.ToggleCompleted(ctx, id, value)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Share создает независимую копию, исходная задача не меняется
func (s *TaskService) Share(ctx context.Context, st model.SharedTask) (model.SharedTask, error) {
	st.Deadline = normalizeDate(st.Deadline)
	if st.TaskID <= 0 || st.UserID <= 0 || st.SharedWithID <= 0 {
		return st, fmt.Errorf("%w: todo_id, user_id and shared_with_id are required", ErrValidation)
	}
	if err := validateFields(st.Category, st.Priority, st.Notes); err != nil {
		return st, err
	}
	return s.repo.Share(ctx, st)
}

func (s *TaskService) GetSharedTask(ctx context.Context, id int64) (model.SharedTask, error) {
	return s.repo.GetSharedTask(ctx, id)
}

func (s *TaskService) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *TaskService) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.users.GetUserByEmail(ctx, email)
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.UserID <= 0 {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if err := validateFields(t.Category, t.Priority, t.Notes); err != nil {
		return err
	}
	if t.Attachment != "" {
		if _, err := base64.StdEncoding.DecodeString(t.Attachment); err != nil {
			return fmt.Errorf("%w: attachment is not valid base64", ErrValidation)
		}
	}
	return nil
}

func validateFields(c model.Category, p model.Priority, notes string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, c)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
	}
	if model.NotesTooLong(notes) {
		return fmt.Errorf("%w: notes longer than %d characters", ErrValidation, model.MaxNotesLength)
	}
	return nil
}

// Нулевая дата приходит из пустой строки в JSON
func normalizeDate(d *model.Date) *model.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
