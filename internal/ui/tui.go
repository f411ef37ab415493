// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/storage"
	"github.com/nibzard/tasks-go/internal/task"
)

// taskFilter selects which tasks the TUI displays.
type taskFilter int

const (
	filterAll taskFilter = iota
	filterPending
	filterCompleted
)

func (f taskFilter) String() string {
	switch f {
	case filterPending:
		return "pending"
	case filterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// RunTUI starts a read-only task viewer over the given store.
func RunTUI(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(cfg, store)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	cfg          *config.Config
	store        *storage.Storage
	loadErr      error
	tasks        []task.Task
	pending      int
	completed    int
	tickInterval time.Duration
	filter       taskFilter
	showHelp     bool
}

type tickMsg time.Time

func newTUIModel(cfg *config.Config, store *storage.Storage) *tuiModel {
	return &tuiModel{
		cfg:          cfg,
		store:        store,
		tickInterval: time.Second,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "1":
			m.filter = filterPending
			return m, nil
		case "2":
			m.filter = filterCompleted
			return m, nil
		case "0":
			m.filter = filterAll
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != filterAll {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	if m.loadErr != nil {
		b.WriteString("Error loading task file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, m.pending, m.completed)
	writeTasks(&b, m.visibleTasks())
	writeConfig(&b, m.store.Path())
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	tasks, err := m.store.Load()
	if err != nil {
		m.loadErr = err
		m.tasks = nil
		m.pending = 0
		m.completed = 0
		return
	}
	m.loadErr = nil

	sorted := make([]task.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created > sorted[j].Created
	})

	m.tasks = sorted
	m.pending = 0
	m.completed = 0
	for _, t := range tasks {
		if t.Completed {
			m.completed++
		} else {
			m.pending++
		}
	}
}

func (m *tuiModel) visibleTasks() []task.Task {
	if m.filter == filterAll {
		return m.tasks
	}
	var out []task.Task
	for _, t := range m.tasks {
		if (m.filter == filterCompleted) == t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func writeTitle(b *strings.Builder) {
	title := "Tasks TUI"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, pending, completed int) {
	b.WriteString("Overview\n\n")
	b.WriteString(fmt.Sprintf("  Pending: %d  Completed: %d  Total: %d\n\n",
		pending, completed, pending+completed))
}

func writeTasks(b *strings.Builder, tasks []task.Task) {
	b.WriteString("Tasks\n\n")
	if len(tasks) == 0 {
		b.WriteString("  No tasks to show.\n\n")
		return
	}
	const maxRows = 15
	for i, t := range tasks {
		if i >= maxRows {
			b.WriteString(fmt.Sprintf("  ... and %d more\n", len(tasks)-maxRows))
			break
		}
		b.WriteString(formatTask(t))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeConfig(b *strings.Builder, dataFile string) {
	b.WriteString("Configuration\n\n")
	b.WriteString(fmt.Sprintf("  Task File: %s\n\n", dataFile))
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by pending\n")
	b.WriteString("  2            Filter by completed\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

func formatTask(t task.Task) string {
	statusIcon := " "
	if t.Completed {
		statusIcon = "x"
	}

	id := t.ID
	if len(id) > 8 {
		id = id[:8]
	}

	desc := t.Description
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}

	line := fmt.Sprintf("  [%s] %s %s", statusIcon, id, desc)
	if len(t.Tags) > 0 {
		line += "  #" + strings.Join(t.Tags, " #")
	}
	return line
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
