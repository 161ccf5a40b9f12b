package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Which part of the screen receives key presses.
type uiFocus int

const (
	focusInput uiFocus = iota
	focusList
	focusEdit
)

// changeBuffer bounds how many store changes can queue for the screen. Only the
// newest snapshot matters, so overflow is dropped.
const changeBuffer = 16

type uiKeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Toggle         key.Binding
	Edit           key.Binding
	Delete         key.Binding
	NextFilter     key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	ClearCompleted key.Binding
	SwitchFocus    key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func (k uiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchFocus, k.Toggle, k.Edit, k.Delete, k.NextFilter, k.Help, k.Quit}
}

func (k uiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchFocus},
		{k.Toggle, k.Edit, k.Delete, k.ClearCompleted},
		{k.NextFilter, k.FilterAll, k.FilterActive, k.FilterDone},
		{k.Help, k.Quit},
	}
}

func defaultUIKeyMap() uiKeyMap {
	return uiKeyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Edit:           key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		NextFilter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next filter")),
		FilterAll:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterActive:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		FilterDone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		ClearCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		SwitchFocus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "input/list")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Style definitions.
var (
	uiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e77f11")).
			Padding(0, 1)

	uiActiveTaskStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4d4d4d"))
	uiCompletedTaskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")).Strikethrough(true)
	uiCursorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#e77f11")).Bold(true)
	uiFilterStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	uiCurrentFilterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e77f11")).Underline(true)
	uiFooterStyle        = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(lipgloss.Color("240"))
	uiEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// storeChangeMsg carries a change published by the task store.
type storeChangeMsg models.Change

type uiModel struct {
	store   core.TaskStore
	snap    models.Snapshot
	changes chan models.Change
	unsub   func()

	focus     uiFocus
	cursor    int
	editingID string

	input textinput.Model
	keys  uiKeyMap
	help  help.Model

	width  int
	height int
}

func newUIModel(store core.TaskStore) uiModel {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 0
	ti.Prompt = "❯ "
	ti.Focus()

	changes := make(chan models.Change, changeBuffer)
	unsub := store.Subscribe(func(c models.Change) {
		select {
		case changes <- c:
		default:
		}
	})

	return uiModel{
		store:   store,
		snap:    store.Snapshot(),
		changes: changes,
		unsub:   unsub,
		focus:   focusInput,
		input:   ti,
		keys:    defaultUIKeyMap(),
		help:    help.New(),
	}
}

// close detaches the screen from the store. It must run after the program exits.
func (m uiModel) close() {
	m.unsub()
	close(m.changes)
}

func waitForChange(ch <-chan models.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangeMsg(c)
	}
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case storeChangeMsg:
		m.apply(msg.Snapshot)
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusInput:
			return m.updateInput(msg)
		case focusEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.apply(m.store.AddTask(m.input.Value()))
		m.input.Reset()
		return m, nil
	case tea.KeyTab, tea.KeyEsc:
		if m.snap.TotalCount > 0 {
			m.focus = focusList
			m.input.Blur()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		// An empty title deletes the task.
		m.apply(m.store.RenameTask(m.editingID, m.input.Value()))
		return m.leaveEdit(), nil
	case tea.KeyEsc:
		return m.leaveEdit(), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uiModel) leaveEdit() uiModel {
	m.editingID = ""
	m.input.Reset()
	m.input.Placeholder = "What needs to be done?"
	m.input.Blur()
	m.focus = focusList
	if m.snap.TotalCount == 0 {
		m.focus = focusInput
		m.input.Focus()
	}
	return m
}

func (m uiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchFocus):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Filtered)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.apply(m.store.ToggleTask(t.ID))
		}
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.focus = focusEdit
			m.editingID = t.ID
			m.input.SetValue(t.Title)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.apply(m.store.DeleteTask(t.ID))
		}
	case key.Matches(msg, m.keys.NextFilter):
		m.apply(m.store.SetFilter(m.snap.Filter.Next()))
	case key.Matches(msg, m.keys.FilterAll):
		m.apply(m.store.SetFilter(models.FilterAll))
	case key.Matches(msg, m.keys.FilterActive):
		m.apply(m.store.SetFilter(models.FilterActive))
	case key.Matches(msg, m.keys.FilterDone):
		m.apply(m.store.SetFilter(models.FilterCompleted))
	case key.Matches(msg, m.keys.ClearCompleted):
		m.apply(m.store.ClearCompleted())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	if m.snap.TotalCount == 0 {
		m.focus = focusInput
		return m, m.input.Focus()
	}
	return m, nil
}

// apply installs snap unless a newer one is already shown.
func (m *uiModel) apply(snap models.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	m.snap = snap
	if m.cursor >= len(snap.Filtered) {
		m.cursor = len(snap.Filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m uiModel) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Filtered) {
		return models.Task{}, false
	}
	return m.snap.Filtered[m.cursor], true
}

func (m uiModel) View() string {
	var b strings.Builder
	b.WriteString(uiTitleStyle.Render("todos"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())

	if m.snap.FooterVisible() {
		b.WriteString("\n")
		b.WriteString(uiFooterStyle.Render(m.renderFooter()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m uiModel) renderList() string {
	if m.snap.TotalCount == 0 {
		return uiEmptyStyle.Render("  Nothing to do yet.")
	}
	if len(m.snap.Filtered) == 0 {
		return uiEmptyStyle.Render(fmt.Sprintf("  No %s tasks.", strings.ToLower(string(m.snap.Filter))))
	}

	var b strings.Builder
	for i, t := range m.snap.Filtered {
		cursor := "  "
		if m.focus != focusInput && i == m.cursor {
			cursor = uiCursorStyle.Render("> ")
		}
		check := "[ ]"
		style := uiActiveTaskStyle
		if t.Completed {
			check = "[x]"
			style = uiCompletedTaskStyle
		}
		title := t.Title
		if m.focus == focusEdit && t.ID == m.editingID {
			title += "  (editing)"
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, style.Render(title)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m uiModel) renderFooter() string {
	parts := []string{itemsLeft(m.snap.ActiveCount)}

	if m.snap.FilterMenuVisible() {
		filters := make([]string, 0, len(models.Filters()))
		for _, f := range models.Filters() {
			if f == m.snap.Filter {
				filters = append(filters, uiCurrentFilterStyle.Render(string(f)))
			} else {
				filters = append(filters, uiFilterStyle.Render(string(f)))
			}
		}
		parts = append(parts, strings.Join(filters, " "))
	}

	if m.snap.ClearCompletedVisible() {
		parts = append(parts, uiFilterStyle.Render(fmt.Sprintf("c: clear completed (%d)", m.snap.CompletedCount)))
	}
	return strings.Join(parts, "   ")
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive single-screen to-do list",
	Long: `Open the interactive to-do screen.

Type a title and press enter to add it. Press tab to move to the list, then
space to toggle, e to edit (an empty title deletes), d to delete, f or 1-3 to
filter and c to clear completed tasks. Press ? for all keys and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return errStoreNotInitialized
		}
		m := newUIModel(Store)
		defer m.close()

		var opts []tea.ProgramOption
		if AltScreen {
			opts = append(opts, tea.WithAltScreen())
		}
		_, err := tea.NewProgram(m, opts...).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
