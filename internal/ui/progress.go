package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxTasks bounds the scrolling task list (spec.md §7 "a scrolling task
// list") so a long-running sink doesn't grow the view unbounded.
const maxTasks = 8

// EventKind discriminates the progress messages the ingestion loop
// reports to the TUI.
type EventKind int

const (
	BlockCommitted EventKind = iota
	EntrySkipped
	Fatal
)

// Event is one progress notification the ingestion loop emits; cmd/ksink
// forwards these from Loop onto the channel Run consumes.
type Event struct {
	Kind        EventKind
	BlockNumber uint64
	Message     string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	taskStyle   = lipgloss.NewStyle().Faint(true)
	fatalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type model struct {
	gauge       progress.Model
	blocks      uint64
	tasks       []string
	fatal       string
	events      <-chan Event
	closedEvent bool
}

func newModel(events <-chan Event) model {
	return model{
		gauge:  progress.New(progress.WithDefaultGradient()),
		events: events,
	}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

type eventMsg struct {
	event Event
	ok    bool
}

func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		return eventMsg{event: e, ok: ok}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case eventMsg:
		if !msg.ok {
			m.closedEvent = true
			return m, tea.Quit
		}
		m.apply(msg.event)
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m *model) apply(e Event) {
	switch e.Kind {
	case BlockCommitted:
		m.blocks++
		m.pushTask(fmt.Sprintf("block %d committed", e.BlockNumber))
	case EntrySkipped:
		m.pushTask(fmt.Sprintf("block %d: skipped entry (%s)", e.BlockNumber, e.Message))
	case Fatal:
		m.fatal = e.Message
	}
}

func (m *model) pushTask(line string) {
	m.tasks = append(m.tasks, line)
	if len(m.tasks) > maxTasks {
		m.tasks = m.tasks[len(m.tasks)-maxTasks:]
	}
}

func (m model) View() string {
	out := headerStyle.Render(fmt.Sprintf("ksink — %d blocks indexed", m.blocks)) + "\n"
	out += m.gauge.ViewAs(indexingGauge(m.blocks)) + "\n\n"
	for _, task := range m.tasks {
		out += taskStyle.Render(task) + "\n"
	}
	if m.fatal != "" {
		out += "\n" + fatalStyle.Render("fatal: "+m.fatal) + "\n"
	}
	return out
}

// indexingGauge has no fixed total (the stream has no known end), so it
// cycles 0..1 once per 100 blocks purely as a heartbeat indicator that
// the sink is still making progress.
func indexingGauge(blocks uint64) float64 {
	return float64(blocks%100) / 100
}

// Run drives the progress display until events closes or the user
// quits. It blocks the calling goroutine for the lifetime of the TUI;
// callers run the ingestion loop in a separate goroutine.
func Run(events <-chan Event) error {
	p := tea.NewProgram(newModel(events))
	_, err := p.Run()
	return err
}
