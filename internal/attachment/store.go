// Package attachment хранит загруженные вложения в каталоге на диске.
// Файлы адресуются исходным именем, при совпадении имен побеждает последняя запись.
package attachment

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("attachment not found")
	ErrInvalidName = errors.New("invalid attachment name")
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save пишет во временный файл и переименовывает, чтобы читатель не увидел половину файла
func (s *Store) Save(name string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	tmp := filepath.Join(s.dir, ".upload-"+uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close attachment: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store attachment: %w", err)
	}
	return name, nil
}

// Open вызывающий закрывает файл
func (s *Store) Open(name string) (*os.File, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

// Оставляем только базовое имя, никаких путей
func cleanName(name string) (string, error) {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" || strings.HasPrefix(name, ".upload-") {
		return "", ErrInvalidName
	}
	return name, nil
}
