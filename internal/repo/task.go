package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

var (
	ErrorNotFound  = errors.New("not found")
	ErrorConflict  = errors.New("conflict")
	ErrorReference = errors.New("referenced entity does not exist")
)

const taskColumns = `id, user_id, title, deadline, category, priority, notes, attachment, attachment_path, completed, created_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todos (user_id, title, deadline, category, priority, notes, attachment, attachment_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.UserID, t.Title, dateParam(t.Deadline), nullString(string(t.Category)), nullString(string(t.Priority)),
		nullString(t.Notes), nullString(t.Attachment), nullString(t.AttachmentPath),
	)
	created, err := scanTask(row)
	return created, r.mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM todos WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// ListByOwner порядок на уровне хранилища не гарантируется, сортирует клиент
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM todos WHERE user_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE todos SET completed = $2
		WHERE id = $1
		RETURNING `+taskColumns, id, value)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) Share(ctx context.Context, s model.SharedTask) (model.SharedTask, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shared_todos (todo_id, user_id, shared_with_id, deadline, category, priority, notes, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+sharedColumns,
		s.TaskID, s.UserID, s.SharedWithID, dateParam(s.Deadline), nullString(string(s.Category)),
		nullString(string(s.Priority)), nullString(s.Notes), nullString(s.Attachments),
	)
	created, err := scanShared(row)
	return created, r.mapError(err)
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrorNotFound
	}
	return id, err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrorConflict
		case pgerrcode.ForeignKeyViolation:
			return ErrorReference
		}
	}
	return err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var deadline *time.Time
	var category, priority, notes, attachment, attachmentPath *string

	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &deadline, &category, &priority,
		&notes, &attachment, &attachmentPath, &t.Completed, &t.CreatedAt,
	)
	if err != nil {
		return t, err
	}
	t.Deadline = dateValue(deadline)
	t.Category = model.Category(stringValue(category))
	t.Priority = model.Priority(stringValue(priority))
	t.Notes = stringValue(notes)
	t.Attachment = stringValue(attachment)
	t.AttachmentPath = stringValue(attachmentPath)
	return t, nil
}

// Пустые строки храним как NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateParam(d *model.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	return &d.Time
}

func dateValue(t *time.Time) *model.Date {
	if t == nil {
		return nil
	}
	d := model.DateOf(*t)
	return &d
}
