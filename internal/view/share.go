package view

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/client"
	"github.com/BuzzLyutic/taskcentral/internal/model"
)

// Share отправляет снимок задачи taskID пользователю recipientID.
// Получатель сначала ищется на сервере, неизвестный показывается диалогом.
func (l *TaskList) Share(ctx context.Context, taskID, recipientID int64) {
	l.mu.Lock()
	i := l.indexOf(taskID)
	if i < 0 {
		l.mu.Unlock()
		return
	}
	task := l.tasks[i]
	if recipientID <= 0 {
		l.showDialog(DialogUnknownUser, UnknownUserMessage)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	if recipientID == l.ownerID {
		l.logger.Warn("share with owner ignored", zap.Int64("task_id", taskID))
		return
	}

	user, err := l.api.GetUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			l.mu.Lock()
			l.showDialog(DialogUnknownUser, UnknownUserMessage)
			l.mu.Unlock()
			return
		}
		l.logger.Error("failed to get user", zap.Int64("user_id", recipientID), zap.Error(err))
		return
	}

	attachments := task.AttachmentPath
	if attachments == "" {
		attachments = task.Attachment
	}
	_, err = l.api.ShareTask(ctx, model.SharedTask{
		TaskID:       task.ID,
		UserID:       l.ownerID,
		SharedWithID: user.ID,
		Deadline:     task.Deadline,
		Category:     task.Category,
		Priority:     task.Priority,
		Notes:        task.Notes,
		Attachments:  attachments,
	})
	if err != nil {
		l.logger.Error("failed to share task", zap.Int64("task_id", taskID), zap.Int64("user_id", recipientID), zap.Error(err))
		return
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}
	l.mu.Lock()
	l.showSuccess(fmt.Sprintf("Tarea compartida con %s.", name))
	l.mu.Unlock()
}
