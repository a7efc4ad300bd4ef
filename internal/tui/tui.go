// Package tui терминальный клиент поверх view.TaskList.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/taskcentral/internal/model"
	"github.com/BuzzLyutic/taskcentral/internal/view"
)

// List то, что модель использует из view.TaskList
type List interface {
	State() view.State
	Changes() <-chan struct{}
	Load(ctx context.Context)
	Create(ctx context.Context)
	SetTitle(string)
	SetDeadline(string)
	SetCategory(model.Category)
	SetPriority(model.Priority)
	SetNotes(string)
	SetAttachment(string)
	DismissDialog()
	PressStart(id int64)
	PressEnd()
	Tap(ctx context.Context, id int64)
	ToggleCompleted(ctx context.Context, id int64)
	ToggleTheme()
	Share(ctx context.Context, taskID, recipientID int64)
	UploadAttachment(ctx context.Context)
	DownloadAttachment(ctx context.Context, id int64)
}

func Run(ctx context.Context, list List) error {
	program := tea.NewProgram(newModel(ctx, list), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type field int

const (
	fieldTitle field = iota
	fieldDeadline
	fieldCategory
	fieldPriority
	fieldNotes
	fieldAttachment
	fieldCount
)

var fieldLabels = [fieldCount]string{"Título", "Fecha límite", "Categoría", "Prioridad", "Notas", "Adjunto"}

var (
	categories = []model.Category{"", model.CategoryWork, model.CategoryPersonal, model.CategoryStudy}
	priorities = []model.Priority{"", model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
)

type refreshMsg struct{}

type changedMsg struct{}

type tuiModel struct {
	ctx     context.Context
	list    List
	state   view.State
	cursor  int
	editing bool
	field   field
	// sharing ввод id получателя для выбранной задачи
	sharing   bool
	recipient string
}

func newModel(ctx context.Context, list List) *tuiModel {
	return &tuiModel{ctx: ctx, list: list, state: list.State()}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(m.run(m.list.Load), waitForChange(m.list.Changes()))
}

// run выполняет запрос к API вне цикла отрисовки
func (m *tuiModel) run(f func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		f(m.ctx)
		return refreshMsg{}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.refresh()
		return m, nil
	case changedMsg:
		m.refresh()
		return m, waitForChange(m.list.Changes())
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch {
		case m.sharing:
			cmd = m.updateShare(msg)
		case m.editing:
			cmd = m.updateForm(msg)
		default:
			cmd = m.updateList(msg)
		}
		m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) refresh() {
	m.state = m.list.State()
	if m.cursor >= len(m.state.Tasks) {
		m.cursor = max(len(m.state.Tasks)-1, 0)
	}
}

func (m *tuiModel) selected() (int64, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Tasks) {
		return 0, false
	}
	return m.state.Tasks[m.cursor].ID, true
}

// В терминале нет события отпускания клавиши: удержание "d" приходит
// повторами, а любая другая клавиша считается отпусканием.
func (m *tuiModel) updateList(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "d" && m.state.Holding != 0 {
		m.list.PressEnd()
	}

	if m.state.Dialog != view.DialogNone {
		if key == "esc" || key == "enter" {
			m.list.DismissDialog()
		}
		return nil
	}

	id, ok := m.selected()
	switch key {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case "n":
		m.editing = true
		m.field = fieldTitle
	case "s":
		if ok {
			m.sharing = true
			m.recipient = ""
		}
	case "o":
		if ok {
			return m.run(func(ctx context.Context) { m.list.DownloadAttachment(ctx, id) })
		}
	case "t":
		m.list.ToggleTheme()
	case "d":
		// повтор клавиши не перезапускает таймер
		if ok && m.state.Holding != id {
			m.list.PressStart(id)
		}
	case "x":
		if ok {
			return m.run(func(ctx context.Context) { m.list.Tap(ctx, id) })
		}
	case " ":
		if ok {
			return m.run(func(ctx context.Context) { m.list.ToggleCompleted(ctx, id) })
		}
	case "r":
		return m.run(m.list.Load)
	}
	return nil
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	if m.state.Dialog != view.DialogNone {
		if msg.String() == "esc" || msg.String() == "enter" {
			m.list.DismissDialog()
		}
		return nil
	}

	draft := m.state.Draft
	switch msg.String() {
	case "esc":
		m.editing = false
	case "tab", "down":
		m.field = (m.field + 1) % fieldCount
	case "shift+tab", "up":
		m.field = (m.field + fieldCount - 1) % fieldCount
	case "enter":
		return m.run(m.list.Create)
	case "ctrl+u":
		// файл из поля "Adjunto" уходит на /upload, задача сошлется на него по имени
		return m.run(m.list.UploadAttachment)
	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch m.field {
		case fieldCategory:
			m.list.SetCategory(cycle(categories, draft.Category, step))
		case fieldPriority:
			m.list.SetPriority(cycle(priorities, draft.Priority, step))
		}
	case "backspace":
		m.setText(trimLast(m.text(draft)))
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.setText(m.text(draft) + string(msg.Runes))
		}
	}
	return nil
}

func (m *tuiModel) updateShare(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.sharing = false
	case "backspace":
		m.recipient = trimLast(m.recipient)
	case "enter":
		m.sharing = false
		id, ok := m.selected()
		recipient, err := strconv.ParseInt(m.recipient, 10, 64)
		if !ok || err != nil {
			return nil
		}
		return m.run(func(ctx context.Context) { m.list.Share(ctx, id, recipient) })
	default:
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				if r >= '0' && r <= '9' {
					m.recipient += string(r)
				}
			}
		}
	}
	return nil
}

func (m *tuiModel) text(d view.Draft) string {
	switch m.field {
	case fieldTitle:
		return d.Title
	case fieldDeadline:
		return d.Deadline
	case fieldNotes:
		return d.Notes
	case fieldAttachment:
		return d.AttachmentPath
	}
	return ""
}

func (m *tuiModel) setText(s string) {
	switch m.field {
	case fieldTitle:
		m.list.SetTitle(s)
	case fieldDeadline:
		m.list.SetDeadline(s)
	case fieldNotes:
		m.list.SetNotes(s)
	case fieldAttachment:
		m.list.SetAttachment(s)
	}
}

func cycle[T comparable](values []T, current T, step int) T {
	i := 0
	for j, v := range values {
		if v == current {
			i = j
			break
		}
	}
	return values[(i+step+len(values))%len(values)]
}

func trimLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func (m *tuiModel) View() string {
	st := newStyles(m.state.Theme)
	var b strings.Builder

	b.WriteString(st.title.Render("TaskCentral"))
	b.WriteString("\n\n")

	if m.state.Success {
		b.WriteString(st.success.Render(m.state.Message))
		b.WriteString("\n\n")
	}

	if len(m.state.Tasks) == 0 {
		b.WriteString(st.muted.Render("No hay tareas."))
		b.WriteString("\n")
	}
	for i, t := range m.state.Tasks {
		b.WriteString(m.renderTask(st, i, t))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.renderForm(st))
		b.WriteString("\n")
	}

	if m.sharing {
		b.WriteString(st.form.Render("Compartir con el usuario (id): " + m.recipient + "▏"))
		b.WriteString("\n")
	}

	if m.state.Dialog != view.DialogNone {
		b.WriteString(st.dialog.Render(m.state.DialogMessage))
		b.WriteString("\n")
	}

	b.WriteString(st.muted.Render(help(m.editing, m.sharing)))
	return st.page.Render(b.String())
}

func (m *tuiModel) renderTask(st styles, i int, t model.Task) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	switch t.ID {
	case m.state.Armed:
		check = "[🗑]"
	case m.state.Holding:
		check = "[…]"
	}

	line := fmt.Sprintf("%s %s", check, t.Title)
	if t.Priority != "" {
		line += fmt.Sprintf("  (%s)", t.Priority)
	}
	if t.Deadline != nil {
		line += "  " + t.Deadline.String()
	}
	if t.Notes != "" {
		line += "  " + t.Notes
	}
	if t.AttachmentPath != "" {
		line += "  📎 " + t.AttachmentPath
	}

	card := st.card.Background(lipgloss.Color(view.CategoryColor(t.Category)))
	if i == m.cursor {
		card = card.Bold(true).BorderLeft(true).BorderStyle(lipgloss.ThickBorder())
	}
	return card.Render(line)
}

func (m *tuiModel) renderForm(st styles) string {
	d := m.state.Draft
	values := [fieldCount]string{d.Title, d.Deadline, string(d.Category), string(d.Priority), d.Notes, d.AttachmentPath}

	var b strings.Builder
	for f := fieldTitle; f < fieldCount; f++ {
		label := fmt.Sprintf("%-13s", fieldLabels[f]+":")
		value := values[f]
		if f == fieldCategory || f == fieldPriority {
			if value == "" {
				value = "-"
			}
			value = "‹ " + value + " ›"
		}
		row := label + " " + value
		if f == m.field {
			row = st.focus.Render(row + "▏")
		}
		b.WriteString(row + "\n")
	}
	if d.UploadedName != "" {
		b.WriteString("Subido:       " + d.UploadedName + "\n")
	}
	return st.form.Render(b.String())
}

func help(editing, sharing bool) string {
	switch {
	case sharing:
		return "id del usuario • enter: compartir • esc: cancelar"
	case editing:
		return "tab: campo • ←/→: opción • ctrl+u: subir adjunto • enter: crear • esc: volver"
	}
	return "n: nueva • d (mantener): armar borrado • x: borrar • espacio: completar • s: compartir • o: descargar adjunto • t: tema • r: recargar • q: salir"
}
