package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// File хранит настройки клиента в одном TOML-файле.
// Файл перечитывается при создании и перезаписывается целиком на каждый Set.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func Open(path string) (*File, error) {
	f := &File{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &f.values); err != nil {
		return nil, fmt.Errorf("decode prefs %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		// в памяти остается то же, что на диске
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) flush() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f.values); err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write prefs %s: %w", f.path, err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write prefs %s: %w", f.path, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write prefs %s: %w", f.path, err)
	}
	return nil
}
