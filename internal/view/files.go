package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// UploadAttachment загружает файл из черновика через /upload.
// После успеха задача будет ссылаться на имя на сервере, а не встраивать файл в base64.
func (l *TaskList) UploadAttachment(ctx context.Context) {
	l.mu.Lock()
	path := l.draft.AttachmentPath
	l.mu.Unlock()
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		l.logger.Error("failed to open attachment", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	name, err := l.api.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		l.logger.Error("failed to upload attachment", zap.String("path", path), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draft.AttachmentPath == path {
		l.draft.AttachmentPath = ""
	}
	l.draft.UploadedName = name
}

// DownloadAttachment сохраняет загруженный файл задачи id в каталог загрузок
func (l *TaskList) DownloadAttachment(ctx context.Context, id int64) {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 || l.tasks[i].AttachmentPath == "" {
		l.mu.Unlock()
		return
	}
	name := l.tasks[i].AttachmentPath
	l.mu.Unlock()

	dst, err := l.saveDownload(ctx, name)
	if err != nil {
		l.logger.Error("failed to download attachment", zap.String("filename", name), zap.Error(err))
		return
	}

	l.mu.Lock()
	l.showSuccess(fmt.Sprintf("Archivo guardado en %s", dst))
	l.mu.Unlock()
}

func (l *TaskList) saveDownload(ctx context.Context, name string) (string, error) {
	body, err := l.api.Download(ctx, name)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(l.downloadDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(l.downloadDir, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, f.Close()
}
