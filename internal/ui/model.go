// Package ui is the terminal front end for the task list: a creation form
// above a list of task rows, driven by a client.Store.
package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rhinobase/workshop/internal/client"
	dom "github.com/rhinobase/workshop/internal/domain"
)

// Focus is the region receiving keyboard input.
type Focus int

const (
	FocusForm Focus = iota
	FocusList
)

// ViewState is how a row renders its text.
type ViewState int

const (
	Viewing ViewState = iota
	Editing
)

// RowState tracks a request in flight for one row.
type RowState int

const (
	RowIdle RowState = iota
	RowMutatingStatus
	RowMutatingDelete
)

// Row is one task in the list plus its local UI state.
type Row struct {
	Task   dom.Task
	View   ViewState
	State  RowState
	editor textinput.Model
}

type tasksMsg struct {
	tasks []dom.Task
	err   error
}

type createdMsg struct{ err error }

type statusSetMsg struct {
	id  string
	err error
}

type deletedMsg struct {
	id  string
	err error
}

// Model is the bubbletea model for the task list.
type Model struct {
	ctx     context.Context
	store   *client.Store
	keys    KeyMap
	input   textinput.Model
	spinner spinner.Model

	focus    Focus
	rows     []Row
	cursor   int
	creating bool
	query    client.QueryStatus
	lastErr  error
	width    int
}

// New returns a model with the form focused.
func New(ctx context.Context, store *client.Store) Model {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 500
	input.Focus()

	return Model{
		ctx:     ctx,
		store:   store,
		keys:    DefaultKeyMap,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		focus:   FocusForm,
		query:   client.QueryLoading,
	}
}

// Run starts the UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, store *client.Store) error {
	program := tea.NewProgram(New(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, model.spinner.Tick, model.fetch())
}

// Rows returns the current rows. Used by tests and callers embedding the model.
func (model Model) Rows() []Row { return model.rows }

// CanSubmit reports whether the form's submit control is enabled.
func (model Model) CanSubmit() bool {
	return !model.creating && strings.TrimSpace(model.input.Value()) != ""
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case tasksMsg:
		if message.err != nil {
			model.query = client.QueryError
			model.lastErr = message.err
			return model, nil
		}
		model.query = client.QuerySuccess
		model.setTasks(message.tasks)
		return model, nil

	case createdMsg:
		model.creating = false
		if message.err != nil {
			model.lastErr = message.err
			return model, nil
		}
		model.lastErr = nil
		model.input.Reset()
		return model.refetch()

	case statusSetMsg:
		return model.finishMutation(message.id, message.err)

	case deletedMsg:
		return model.finishMutation(message.id, message.err)

	case tea.KeyMsg:
		if model.focus == FocusForm {
			return model.handleFormKeys(message)
		}
		return model.handleListKeys(message)
	}

	if model.focus == FocusForm {
		var cmd tea.Cmd
		model.input, cmd = model.input.Update(message)
		return model, cmd
	}
	return model, nil
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.Focus):
		model.focus = FocusList
		model.input.Blur()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		if !model.CanSubmit() {
			return model, nil
		}
		model.creating = true
		return model, model.create(model.input.Value())
	}

	var cmd tea.Cmd
	model.input, cmd = model.input.Update(message)
	return model, cmd
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Rows are edited through pointers below; keep the previous model's slice intact.
	model.rows = slices.Clone(model.rows)
	if row := model.selected(); row != nil && row.View == Editing {
		switch {
		case message.Type == tea.KeyCtrlC:
			return model, tea.Quit
		case key.Matches(message, model.keys.Cancel), key.Matches(message, model.keys.Submit):
			row.View = Viewing
			row.editor.Blur()
			return model, nil
		}
		var cmd tea.Cmd
		row.editor, cmd = row.editor.Update(message)
		return model, cmd
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Focus):
		model.focus = FocusForm
		return model, model.input.Focus()

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.rows)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Reload):
		return model.refetch()

	case key.Matches(message, model.keys.Toggle):
		row := model.selected()
		if row == nil || row.State != RowIdle {
			return model, nil
		}
		row.State = RowMutatingStatus
		return model, model.setStatus(row.Task.ID, !row.Task.Status)

	case key.Matches(message, model.keys.Delete):
		row := model.selected()
		if row == nil || row.State != RowIdle {
			return model, nil
		}
		row.State = RowMutatingDelete
		return model, model.remove(row.Task.ID)

	case key.Matches(message, model.keys.Edit):
		row := model.selected()
		if row == nil || row.State != RowIdle {
			return model, nil
		}
		row.View = Editing
		row.editor = textinput.New()
		row.editor.SetValue(row.Task.Task)
		return model, row.editor.Focus()
	}
	return model, nil
}

func (model Model) finishMutation(id string, err error) (tea.Model, tea.Cmd) {
	model.rows = slices.Clone(model.rows)
	for i := range model.rows {
		if model.rows[i].Task.ID == id {
			model.rows[i].State = RowIdle
		}
	}
	if err != nil {
		model.lastErr = err
		return model, nil
	}
	model.lastErr = nil
	return model.refetch()
}

func (model Model) refetch() (tea.Model, tea.Cmd) {
	model.store.Invalidate()
	model.query = client.QueryLoading
	return model, model.fetch()
}

// setTasks replaces the rows, keeping per-row state for ids that survive.
func (model *Model) setTasks(tasks []dom.Task) {
	previous := make(map[string]Row, len(model.rows))
	for _, row := range model.rows {
		previous[row.Task.ID] = row
	}
	rows := make([]Row, len(tasks))
	for i, t := range tasks {
		row, ok := previous[t.ID]
		if !ok {
			row = Row{}
		}
		row.Task = t
		rows[i] = row
	}
	model.rows = rows
	if model.cursor >= len(rows) {
		model.cursor = max(len(rows)-1, 0)
	}
}

func (model *Model) selected() *Row {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return nil
	}
	return &model.rows[model.cursor]
}

func (model Model) fetch() tea.Cmd {
	ctx, store := model.ctx, model.store
	return func() tea.Msg {
		list, err := store.FetchAll(ctx)
		return tasksMsg{tasks: list, err: err}
	}
}

func (model Model) create(text string) tea.Cmd {
	ctx, store := model.ctx, model.store
	return func() tea.Msg {
		_, err := store.Create(ctx, text)
		return createdMsg{err: err}
	}
}

func (model Model) setStatus(id string, status bool) tea.Cmd {
	ctx, store := model.ctx, model.store
	return func() tea.Msg {
		return statusSetMsg{id: id, err: store.SetStatus(ctx, id, status)}
	}
}

func (model Model) remove(id string) tea.Cmd {
	ctx, store := model.ctx, model.store
	return func() tea.Msg {
		return deletedMsg{id: id, err: store.Delete(ctx, id)}
	}
}

func (model Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todo App"))
	b.WriteString("\n")
	b.WriteString(model.viewForm())
	b.WriteString("\n\n")
	b.WriteString(listStyle.Render(model.viewList()))
	b.WriteString("\n")
	if model.lastErr != nil {
		b.WriteString(errorStyle.Render("error: " + model.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(model.viewHelp())
	return b.String()
}

func (model Model) viewForm() string {
	button := buttonStyle
	if !model.CanSubmit() {
		button = buttonDisabledStyle
	}
	label := "Add Task"
	if model.creating {
		label = model.spinner.View() + " Adding"
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, model.input.View(), "  ", button.Render(label))
}

func (model Model) viewList() string {
	switch {
	case model.query == client.QueryError:
		return errorStyle.Render("Error")
	case model.query == client.QueryLoading && model.rows == nil:
		return model.spinner.View() + " Loading..."
	case len(model.rows) == 0:
		return emptyStyle.Render("No Data Found")
	}

	lines := make([]string, len(model.rows))
	for i, row := range model.rows {
		lines[i] = model.viewRow(i, row)
	}
	return strings.Join(lines, "\n")
}

func (model Model) viewRow(i int, row Row) string {
	cursor := "  "
	if model.focus == FocusList && i == model.cursor {
		cursor = "› "
	}
	check := "[ ]"
	status := pendingStyle.Render("Pending")
	if row.Task.Status {
		check = "[x]"
		status = completedStyle.Render("Completed")
	}

	text := row.Task.Task
	if row.View == Editing {
		text = row.editor.View()
	}
	line := fmt.Sprintf("%s%s %s  Status: %s", cursor, check, text, status)

	switch row.State {
	case RowMutatingStatus:
		return mutatingStyle.Render(line + " " + model.spinner.View() + " saving")
	case RowMutatingDelete:
		return mutatingStyle.Render(line + " " + model.spinner.View() + " deleting")
	}
	if model.focus == FocusList && i == model.cursor {
		return selectedStyle.Render(line)
	}
	return line
}

func (model Model) viewHelp() string {
	var bindings []key.Binding
	if model.focus == FocusForm {
		bindings = []key.Binding{model.keys.Submit, model.keys.Focus}
	} else {
		bindings = []key.Binding{
			model.keys.Up, model.keys.Down, model.keys.Toggle, model.keys.Delete,
			model.keys.Edit, model.keys.Reload, model.keys.Focus, model.keys.Quit,
		}
	}
	parts := make([]string, len(bindings))
	for i, binding := range bindings {
		help := binding.Help()
		parts[i] = help.Key + " " + help.Desc
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
