package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

const sharedColumns = `id, todo_id, user_id, shared_with_id, deadline, category, priority, notes, attachments, created_at`

func (r *TaskRepo) GetSharedTask(ctx context.Context, id int64) (model.SharedTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sharedColumns+` FROM shared_todos WHERE id = $1`, id)
	s, err := scanShared(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrorNotFound
	}
	return s, err
}

func scanShared(row pgx.Row) (model.SharedTask, error) {
	var s model.SharedTask
	var deadline *time.Time
	var category, priority, notes, attachments *string

	err := row.Scan(
		&s.ID, &s.TaskID, &s.UserID, &s.SharedWithID, &deadline,
		&category, &priority, &notes, &attachments, &s.CreatedAt,
	)
	if err != nil {
		return s, err
	}
	s.Deadline = dateValue(deadline)
	s.Category = model.Category(stringValue(category))
	s.Priority = model.Priority(stringValue(priority))
	s.Notes = stringValue(notes)
	s.Attachments = stringValue(attachments)
	return s, nil
}
