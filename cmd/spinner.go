package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type taskDoneMsg[T any] struct {
	value T
	err   error
}

// spinnerModel runs one task and, once it finishes, replaces the spinner
// with a summary line built from the task's result.
type spinnerModel[T any] struct {
	spinner spinner.Model
	label   string
	task    tea.Cmd
	summary func(T) string

	value T
	err   error
	done  bool
}

func newSpinnerModel[T any](label string, task tea.Cmd, summary func(T) string) spinnerModel[T] {
	return spinnerModel[T]{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
		task:    task,
		summary: summary,
	}
}

func (m spinnerModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.task)
}

func (m spinnerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case taskDoneMsg[T]:
		m.done = true
		m.value = msg.value
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m spinnerModel[T]) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}
	if m.err != nil {
		return failedStyle.Render("✗") + " " + m.label + "\n"
	}
	if m.summary == nil {
		return ""
	}

	return doneStyle.Render("✓") + " " + m.summary(m.value) + "\n"
}

// runSpinner shows label on output while task runs and leaves the summary of
// its result behind.
func runSpinner[T any](ctx context.Context, output io.Writer, label string, task func(context.Context) (T, error), summary func(T) string) (T, error) {
	taskCmd := func() tea.Msg {
		value, err := task(ctx)
		return taskDoneMsg[T]{value: value, err: err}
	}

	p := tea.NewProgram(
		newSpinnerModel(label, taskCmd, summary),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	var zero T
	finalModel, err := p.Run()
	if err != nil {
		return zero, err
	}

	result, ok := finalModel.(spinnerModel[T])
	if !ok {
		return zero, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.value, result.err
}
