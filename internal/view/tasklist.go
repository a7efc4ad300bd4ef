package view

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

const (
	HoldDuration    = 1500 * time.Millisecond
	SuccessDuration = 3 * time.Second

	ThemeLight = "light"
	ThemeDark  = "dark"

	themeKey = "theme"

	NameRequiredMessage = "Es obligatorio ingresar un nombre para la tarea."
	DuplicateMessage    = "No se pueden crear dos tareas con el mismo nombre."
	InvalidDateMessage  = "Ingrese una fecha válida en formato YYYY-MM-DD."
	UnknownUserMessage  = "Usuario no encontrado."
	CreatedMessage      = "Tarea creada exitosamente."
)

type Dialog int

const (
	DialogNone Dialog = iota
	DialogNameRequired
	DialogDuplicate
	DialogInvalidDate
	DialogUnknownUser
)

// TaskAPI часть HTTP клиента, которая нужна списку
type TaskAPI interface {
	ListTasks(ctx context.Context, ownerID int64) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ShareTask(ctx context.Context, shared model.SharedTask) (model.SharedTask, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Download(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Storage хранилище настроек, сейчас там только тема
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type Timer interface {
	Stop() bool
}

// AfterFunc фабрика таймеров, в тестах подменяется ручной
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Draft struct {
	Title          string
	Deadline       string
	Category       model.Category
	Priority       model.Priority
	Notes          string
	AttachmentPath string
	// UploadedName имя файла на сервере после UploadAttachment, уходит в attachment_path
	UploadedName   string
}

// State снимок для отрисовки
type State struct {
	Tasks         []model.Task
	Draft         Draft
	Dialog        Dialog
	DialogMessage string
	Success       bool
	Message       string
	Theme         string
	Armed         int64
	Holding       int64
}

type Option func(*TaskList)

func WithAfterFunc(f AfterFunc) Option {
	return func(l *TaskList) { l.afterFunc = f }
}

// WithDownloadDir каталог, куда DownloadAttachment сохраняет файлы
func WithDownloadDir(dir string) Option {
	return func(l *TaskList) { l.downloadDir = dir }
}

// WithReadFile подменяет чтение вложения с диска
func WithReadFile(f func(path string) ([]byte, error)) Option {
	return func(l *TaskList) { l.readFile = f }
}

// TaskList состояние клиентского списка задач одного владельца
type TaskList struct {
	api       TaskAPI
	storage   Storage
	ownerID   int64
	logger    *zap.Logger
	afterFunc AfterFunc
	readFile  func(path string) ([]byte, error)

	downloadDir string

	mu            sync.Mutex
	tasks         []model.Task
	draft         Draft
	dialog        Dialog
	dialogMessage string
	success       bool
	message       string
	successTimer  Timer
	successGen    int
	theme         string
	armed         int64
	holding       int64
	holdTimer     Timer
	holdGen       int

	changes chan struct{}
}

func NewTaskList(api TaskAPI, storage Storage, ownerID int64, logger *zap.Logger, opts ...Option) *TaskList {
	l := &TaskList{
		api:       api,
		storage:   storage,
		ownerID:   ownerID,
		logger:    logger,
		afterFunc: realAfterFunc,
		readFile:  os.ReadFile,
		theme:     ThemeLight,
		changes:   make(chan struct{}, 1),

		downloadDir: ".",
	}
	for _, opt := range opts {
		opt(l)
	}

	if v, ok := storage.Get(themeKey); ok && (v == ThemeLight || v == ThemeDark) {
		l.theme = v
	}
	return l
}

// Changes сигналит, что состояние поменялось вне вызова (сработал таймер)
func (l *TaskList) Changes() <-chan struct{} {
	return l.changes
}

func (l *TaskList) notify() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}

func (l *TaskList) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Tasks:         slices.Clone(l.tasks),
		Draft:         l.draft,
		Dialog:        l.dialog,
		DialogMessage: l.dialogMessage,
		Success:       l.success,
		Message:       l.message,
		Theme:         l.theme,
		Armed:         l.armed,
		Holding:       l.holding,
	}
}

// Load загружает задачи владельца и сортирует по приоритету.
// Порядок равных по приоритету задач остается как в ответе сервера.
func (l *TaskList) Load(ctx context.Context) {
	tasks, err := l.api.ListTasks(ctx, l.ownerID)
	if err != nil {
		l.logger.Error("failed to load tasks", zap.Int64("owner_id", l.ownerID), zap.Error(err))
		return
	}

	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})

	l.mu.Lock()
	l.tasks = tasks
	l.mu.Unlock()
}

func (l *TaskList) SetTitle(title string) {
	l.mu.Lock()
	l.draft.Title = title
	l.mu.Unlock()
}

func (l *TaskList) SetDeadline(deadline string) {
	l.mu.Lock()
	l.draft.Deadline = deadline
	l.mu.Unlock()
}

func (l *TaskList) SetCategory(c model.Category) {
	l.mu.Lock()
	l.draft.Category = c
	l.mu.Unlock()
}

func (l *TaskList) SetPriority(p model.Priority) {
	l.mu.Lock()
	l.draft.Priority = p
	l.mu.Unlock()
}

// SetNotes лишнее обрезается до model.MaxNotesLength символов
func (l *TaskList) SetNotes(notes string) {
	if utf8.RuneCountInString(notes) > model.MaxNotesLength {
		notes = string([]rune(notes)[:model.MaxNotesLength])
	}
	l.mu.Lock()
	l.draft.Notes = notes
	l.mu.Unlock()
}

func (l *TaskList) SetAttachment(path string) {
	l.mu.Lock()
	l.draft.AttachmentPath = path
	l.mu.Unlock()
}

func (l *TaskList) DismissDialog() {
	l.mu.Lock()
	l.dialog = DialogNone
	l.dialogMessage = ""
	l.mu.Unlock()
}

// Create проверяет черновик (имя, дубликат, дата), кодирует вложение и отправляет задачу.
// При ошибке проверки API не вызывается.
func (l *TaskList) Create(ctx context.Context) {
	l.mu.Lock()
	draft := l.draft
	title := strings.TrimSpace(draft.Title)

	if title == "" {
		l.showDialog(DialogNameRequired, NameRequiredMessage)
		l.mu.Unlock()
		return
	}
	for _, t := range l.tasks {
		if t.Title == title {
			l.showDialog(DialogDuplicate, DuplicateMessage)
			l.mu.Unlock()
			return
		}
	}

	var deadline *model.Date
	if draft.Deadline != "" {
		parsed, err := time.Parse(model.DateLayout, draft.Deadline)
		if err != nil {
			l.showDialog(DialogInvalidDate, InvalidDateMessage)
			l.mu.Unlock()
			return
		}
		d := model.DateOf(parsed)
		deadline = &d
	}
	l.mu.Unlock()

	attachment, err := l.encodeAttachment(ctx, draft.AttachmentPath)
	if err != nil {
		l.logger.Error("failed to read attachment", zap.String("path", draft.AttachmentPath), zap.Error(err))
		return
	}

	created, err := l.api.CreateTask(ctx, model.Task{
		UserID:     l.ownerID,
		Title:      title,
		Deadline:   deadline,
		Category:   draft.Category,
		Priority:   draft.Priority,
		Notes:      draft.Notes,
		Attachment:     attachment,
		AttachmentPath: draft.UploadedName,
	})
	if err != nil {
		l.logger.Error("failed to create task", zap.String("title", title), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append(l.tasks, created)
	// то, что пользователь успел ввести во время запроса, не теряем
	if l.draft == draft {
		l.draft = Draft{}
	}
	l.showSuccess(CreatedMessage)
}

func (l *TaskList) showDialog(d Dialog, message string) {
	l.dialog = d
	l.dialogMessage = message
}

// showSuccess вызывается под l.mu
func (l *TaskList) showSuccess(message string) {
	if l.successTimer != nil {
		l.successTimer.Stop()
	}
	l.success = true
	l.message = message
	l.successGen++
	gen := l.successGen
	l.successTimer = l.afterFunc(SuccessDuration, func() {
		l.mu.Lock()
		if l.successGen != gen {
			l.mu.Unlock()
			return
		}
		l.success = false
		l.message = ""
		l.successTimer = nil
		l.mu.Unlock()
		l.notify()
	})
}

// encodeAttachment читает файл в отдельной горутине, Create дожидается результата
func (l *TaskList) encodeAttachment(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	type result struct {
		data string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := l.readFile(path)
		if err != nil {
			done <- result{err: fmt.Errorf("read %s: %w", path, err)}
			return
		}
		done <- result{data: base64.StdEncoding.EncodeToString(data)}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// PressStart начало удержания на задаче id. Предыдущее удержание отменяется,
// вооруженная другая задача разоружается. Через HoldDuration задача id вооружается.
func (l *TaskList) PressStart(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelHold()
	if l.armed != id {
		l.armed = 0
	}

	l.holding = id
	l.holdGen++
	gen := l.holdGen
	l.holdTimer = l.afterFunc(HoldDuration, func() {
		l.mu.Lock()
		if l.holdGen != gen {
			l.mu.Unlock()
			return
		}
		l.armed = id
		l.holding = 0
		l.holdTimer = nil
		l.mu.Unlock()
		l.notify()
	})
}

// PressEnd отпускание до срабатывания таймера отменяет удержание
func (l *TaskList) PressEnd() {
	l.mu.Lock()
	l.cancelHold()
	l.mu.Unlock()
}

// cancelHold вызывается под l.mu. Смена поколения отсекает уже запущенный колбэк.
func (l *TaskList) cancelHold() {
	if l.holdTimer != nil {
		l.holdTimer.Stop()
		l.holdTimer = nil
	}
	l.holding = 0
	l.holdGen++
}

// Tap по вооруженной задаче удаляет ее, по любой другой снимает вооружение
func (l *TaskList) Tap(ctx context.Context, id int64) {
	l.mu.Lock()
	armed := l.armed
	l.armed = 0
	l.mu.Unlock()

	if armed == 0 || armed != id {
		return
	}

	if err := l.api.DeleteTask(ctx, id); err != nil {
		l.logger.Error("failed to delete task", zap.Int64("id", id), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		l.tasks = slices.Delete(l.tasks, i, i+1)
	}
}

func (l *TaskList) ToggleCompleted(ctx context.Context, id int64) {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return
	}
	value := !l.tasks[i].Completed
	l.mu.Unlock()

	updated, err := l.api.ToggleCompleted(ctx, id, value)
	if err != nil {
		l.logger.Error("failed to toggle task", zap.Int64("id", id), zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// список мог измениться, пока шел запрос
	if i := l.indexOf(id); i >= 0 {
		l.tasks[i].Completed = updated.Completed
	}
}

// indexOf вызывается под l.mu
func (l *TaskList) indexOf(id int64) int {
	return slices.IndexFunc(l.tasks, func(t model.Task) bool { return t.ID == id })
}

func (l *TaskList) Theme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.theme
}

// ToggleTheme новое значение сразу пишется в Storage
func (l *TaskList) ToggleTheme() {
	l.mu.Lock()
	if l.theme == ThemeDark {
		l.theme = ThemeLight
	} else {
		l.theme = ThemeDark
	}
	theme := l.theme
	l.mu.Unlock()

	if err := l.storage.Set(themeKey, theme); err != nil {
		l.logger.Error("failed to save theme", zap.String("theme", theme), zap.Error(err))
	}
}

// CategoryColor цвет фона карточки по категории
func CategoryColor(c model.Category) string {
	switch c {
	case model.CategoryWork:
		return "#ffcccb"
	case model.CategoryPersonal:
		return "#c2f0c2"
	case model.CategoryStudy:
		return "#c2e2f0"
	}
	return "#ffffff"
}
