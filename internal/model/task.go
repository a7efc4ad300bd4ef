package model

import (
	"time"
	"unicode/utf8"
)

// MaxNotesLength ограничение на длину заметки (в символах)
const MaxNotesLength = 30

type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Media"
	PriorityLow    Priority = "Baja"
)

// Rank используется только для сортировки на клиенте, неизвестный приоритет = 0
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	return p == "" || p.Rank() > 0
}

type Category string

const (
	CategoryWork     Category = "Trabajo"
	CategoryPersonal Category = "Personal"
	CategoryStudy    Category = "Estudio"
)

func (c Category) Valid() bool {
	switch c {
	case "", CategoryWork, CategoryPersonal, CategoryStudy:
		return true
	}
	return false
}

type Task struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	Deadline       *Date     `json:"deadline"`
	Category       Category  `json:"category,omitempty"`
	Priority       Priority  `json:"priority,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Attachment     string    `json:"attachment,omitempty"`
	AttachmentPath string    `json:"attachment_path,omitempty"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotesTooLong считает символы, а не байты
func NotesTooLong(notes string) bool {
	return utf8.RuneCountInString(notes) > MaxNotesLength
}

type SharedTask struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"todo_id"`
	UserID       int64     `json:"user_id"`
	SharedWithID int64     `json:"shared_with_id"`
	Deadline     *Date     `json:"deadline"`
	Category     Category  `json:"category,omitempty"`
	Priority     Priority  `json:"priority,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Attachments  string    `json:"attachments,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ToggleRequest struct {
	Value bool `json:"value"`
}
