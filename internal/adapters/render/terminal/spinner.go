package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

const busyLabel = "Working..."

type busyDoneMsg struct{}

type busyModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newBusyModel(label string, s styles) busyModel {
	return busyModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.spinner),
		),
		label: label,
	}
}

func (m busyModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m busyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case busyDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m busyModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// busyIndicator runs a spinner program while visible. Callers serialize
// access to start, stop and println.
type busyIndicator struct {
	output  io.Writer
	styles  styles
	program *tea.Program
	done    chan struct{}
}

func newBusyIndicator(output io.Writer, s styles) *busyIndicator {
	return &busyIndicator{output: output, styles: s}
}

func (b *busyIndicator) running() bool {
	return b.program != nil
}

func (b *busyIndicator) start() {
	if b.running() {
		return
	}

	p := tea.NewProgram(
		newBusyModel(busyLabel, b.styles),
		tea.WithInput(nil),
		tea.WithOutput(b.output),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	b.program = p
	b.done = done
}

func (b *busyIndicator) stop() {
	if !b.running() {
		return
	}

	b.program.Send(busyDoneMsg{})
	<-b.done
	b.program = nil
	b.done = nil
}

// println prints above the spinner line.
func (b *busyIndicator) println(text string) {
	b.program.Println(text)
}

// IsInteractive reports whether w is a terminal.
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
