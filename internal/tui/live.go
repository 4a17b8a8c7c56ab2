// Package tui shows a solve in progress: the correlator decay drawn so
// far, plus per-block counters, updated as blocks complete.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/glasskit/mctsim/internal/solver"
	"github.com/glasskit/mctsim/internal/viz"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type blockMsg solver.BlockEvent

type doneMsg struct {
	series *solver.Series
	err    error
}

// Model is the bubbletea model for one live solve.
type Model struct {
	name string
	msgs chan tea.Msg

	last     solver.BlockEvent
	series   *solver.Series
	err      error
	finished bool
}

// NewModel starts the solve in its own goroutine and returns the view
// that follows it. The solver's OnBlock hook must be free; it is taken
// over here.
func NewModel(name string, eq *solver.Equation, cfg solver.Config) (Model, error) {
	msgs := make(chan tea.Msg, 16)
	cfg.OnBlock = func(ev solver.BlockEvent) { msgs <- blockMsg(ev) }

	sol, err := solver.New(cfg)
	if err != nil {
		return Model{}, err
	}

	go func() {
		series, err := sol.Solve(eq)
		msgs <- doneMsg{series: series, err: err}
	}()

	return Model{name: name, msgs: msgs}, nil
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg { return <-m.msgs }
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case blockMsg:
		m.last = solver.BlockEvent(msg)
		return m, m.wait()
	case doneMsg:
		m.finished = true
		m.series = msg.series
		m.err = msg.err
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case !m.finished:
		s.WriteString(runStyle.Render("SOLVING") + "\n")
	case m.err != nil:
		s.WriteString(failStyle.Render(fmt.Sprintf("FAILED: %v", m.err)) + "\n")
	default:
		s.WriteString(runStyle.Render("DONE") + "\n")
	}

	times, comp := m.last.Times, m.last.Component
	if m.finished && m.series != nil && m.series.Len() > 0 {
		times, comp = m.series.Times(), m.series.Component(0)
	}
	if len(comp) > 1 {
		chart := asciigraph.Plot(viz.LogResample(times, comp, 70),
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("F(t), log t axis"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.3e", m.last.Time)) + "\n")
	s.WriteString(labelStyle.Render("step size") + valueStyle.Render(fmt.Sprintf("%.3e", m.last.StepSize)) + "\n")
	s.WriteString(labelStyle.Render("blocks") + valueStyle.Render(fmt.Sprintf("%d", m.last.Block)) + "\n")
	s.WriteString(labelStyle.Render("kernel calls") + valueStyle.Render(fmt.Sprintf("%d", m.last.Stats.KernelCalls)) + "\n")
	s.WriteString(labelStyle.Render("iterations") + valueStyle.Render(fmt.Sprintf("%d", m.last.Stats.TotalIterations)) + "\n")

	s.WriteString(helpStyle.Render("q: quit"))
	return s.String() + "\n"
}

// Result returns what the solve produced, once finished.
func (m Model) Result() (*solver.Series, error) { return m.series, m.err }

// Run drives the live view to completion and returns the solved series.
func Run(name string, eq *solver.Equation, cfg solver.Config) (*solver.Series, error) {
	m, err := NewModel(name, eq, cfg)
	if err != nil {
		return nil, err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	fm := final.(Model)
	return fm.Result()
}
