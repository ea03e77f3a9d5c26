package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tronikelis/tip/internal/args"
	"github.com/tronikelis/tip/internal/runner"
	"github.com/tronikelis/tip/internal/session"
)

// debounceMsg fires after the quiet period for one edit burst. Only the
// one tagged with the newest generation dispatches a run, so a burst of
// keystrokes runs the target exactly once, with the final buffer.
type debounceMsg struct {
	generation uint64
}

type chunkMsg runner.Chunk

type chunksClosedMsg struct{}

type Model struct {
	session    *session.Session
	dispatcher runner.Dispatcher
	debounce   time.Duration

	input  textinput.Model
	output viewport.Model

	width, height int

	// Submitted is set when the user accepted the current arguments;
	// cmd replays the command against real stdout after the TUI exits.
	Submitted bool
	quitting  bool
}

func NewModel(sess *session.Session, dispatcher runner.Dispatcher, debounce time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "arguments..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 1024

	return Model{
		session:    sess,
		dispatcher: dispatcher,
		debounce:   debounce,
		input:      ti,
		output:     viewport.New(80, 24),
	}
}

// Value returns the final argument buffer, read by cmd after quit.
func (m Model) Value() string {
	return m.input.Value()
}

func (m Model) Init() tea.Cmd {
	// First run happens immediately: the base command with an empty
	// buffer is a valid invocation and gives the user something to edit
	// against.
	gen := m.session.NextGeneration()
	m.session.BeginRun(gen)
	m.dispatcher.Start(gen, args.Split(m.input.Value()))

	return tea.Batch(textinput.Blink, m.waitForChunk())
}

// waitForChunk blocks on the runner's chunk channel and resubscribes
// after every delivery; the update loop stays the sole consumer.
func (m Model) waitForChunk() tea.Cmd {
	ch := m.dispatcher.Chunks()
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return chunksClosedMsg{}
		}
		return chunkMsg(c)
	}
}

func (m Model) debounceCmd(generation uint64) tea.Cmd {
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{generation: generation}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		m.output.Width = msg.Width
		m.output.Height = max(1, msg.Height-chromeHeight)
		return m, nil

	case chunkMsg:
		c := runner.Chunk(msg)
		if c.Done {
			if m.session.FinishRun(c.Generation, c.Err) {
				m.output.SetContent(m.session.Output())
			}
		} else if m.session.Append(c.Generation, c.Data) {
			m.output.SetContent(m.session.Output())
		}
		return m, m.waitForChunk()

	case chunksClosedMsg:
		return m, nil

	case debounceMsg:
		if msg.generation != m.session.Generation() {
			// Another edit arrived inside the quiet period; its own
			// timer will dispatch for the newer generation.
			return m, nil
		}
		m.session.BeginRun(msg.generation)
		m.dispatcher.Start(msg.generation, args.Split(m.input.Value()))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Remaining messages (blink ticks, mouse wheel) belong to the
	// components themselves.
	var inputCmd, outputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.output, outputCmd = m.output.Update(msg)
	return m, tea.Batch(inputCmd, outputCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.Quit):
		m.quitting = true
		m.dispatcher.Cancel()
		return m, tea.Quit

	case key.Matches(msg, keys.Submit):
		m.Submitted = true
		m.quitting = true
		m.dispatcher.Cancel()
		return m, tea.Quit

	// Scrolling mutates only the viewport offset; no re-run.
	case key.Matches(msg, keys.ScrollUp):
		m.output.LineUp(1)
		return m, nil
	case key.Matches(msg, keys.ScrollDown):
		m.output.LineDown(1)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.output.HalfViewUp()
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.output.HalfViewDown()
		return m, nil
	}

	// Everything else belongs to the editor. Only a buffer mutation
	// triggers a re-run; pure cursor moves just re-render.
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	gen := m.session.NextGeneration()
	m.dispatcher.Cancel()
	return m, tea.Batch(cmd, m.debounceCmd(gen))
}
