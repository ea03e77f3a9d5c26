package tui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tronikelis/tip/internal/runner"
	"github.com/tronikelis/tip/internal/session"
)

type startCall struct {
	generation uint64
	extra      []string
}

// fakeDispatcher records Start/Cancel calls instead of spawning children.
type fakeDispatcher struct {
	chunks  chan runner.Chunk
	starts  []startCall
	cancels int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{chunks: make(chan runner.Chunk, 16)}
}

func (f *fakeDispatcher) Start(generation uint64, extra []string) {
	f.starts = append(f.starts, startCall{generation: generation, extra: extra})
}

func (f *fakeDispatcher) Cancel() { f.cancels++ }

func (f *fakeDispatcher) Chunks() <-chan runner.Chunk { return f.chunks }

func newTestModel(t *testing.T) (Model, *fakeDispatcher, *session.Session) {
	t.Helper()
	sess := session.New("jq", nil, []byte(`{"a":1}`), 100)
	disp := newFakeDispatcher()
	m := NewModel(sess, disp, 10*time.Millisecond)
	return m, disp, sess
}

func typeRune(m Model, r rune) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return next.(Model), cmd
}

func TestInitDispatchesFirstRun(t *testing.T) {
	m, disp, sess := newTestModel(t)

	if cmd := m.Init(); cmd == nil {
		t.Fatal("Init returned no command")
	}
	if len(disp.starts) != 1 {
		t.Fatalf("starts = %d, want 1", len(disp.starts))
	}
	if disp.starts[0].generation != 1 || disp.starts[0].extra != nil {
		t.Errorf("first start = %+v, want generation 1 with no extra args", disp.starts[0])
	}
	if !sess.Running() {
		t.Error("session not marked running after initial dispatch")
	}
}

func TestEditBurstDispatchesOnce(t *testing.T) {
	m, disp, sess := newTestModel(t)
	m.Init()

	// Three keystrokes inside the quiet period: three generations, three
	// cancels, but only the final buffer runs.
	m, _ = typeRune(m, '.')
	m, _ = typeRune(m, 'a')
	m, _ = typeRune(m, '[')

	if got := sess.Generation(); got != 4 {
		t.Fatalf("generation = %d, want 4 (init + three edits)", got)
	}
	if disp.cancels != 3 {
		t.Errorf("cancels = %d, want one per edit", disp.cancels)
	}

	// Timers for superseded generations fire and must be ignored.
	next, _ := m.Update(debounceMsg{generation: 2})
	m = next.(Model)
	next, _ = m.Update(debounceMsg{generation: 3})
	m = next.(Model)
	if len(disp.starts) != 1 {
		t.Fatalf("stale debounce dispatched a run: %+v", disp.starts)
	}

	next, _ = m.Update(debounceMsg{generation: 4})
	m = next.(Model)
	if len(disp.starts) != 2 {
		t.Fatalf("starts = %d, want 2", len(disp.starts))
	}
	want := startCall{generation: 4, extra: []string{".a["}}
	if !reflect.DeepEqual(disp.starts[1], want) {
		t.Errorf("dispatched %+v, want %+v", disp.starts[1], want)
	}
}

func TestBackspaceToEmptyStillRuns(t *testing.T) {
	m, disp, sess := newTestModel(t)
	m.Init()

	m, _ = typeRune(m, 'x')
	next, _ := m.Update(debounceMsg{generation: sess.Generation()})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	next, _ = m.Update(debounceMsg{generation: sess.Generation()})
	m = next.(Model)

	last := disp.starts[len(disp.starts)-1]
	if last.extra != nil {
		t.Errorf("empty buffer dispatched extra args %#v", last.extra)
	}
	if last.generation != sess.Generation() {
		t.Errorf("dispatched generation %d, want %d", last.generation, sess.Generation())
	}
}

func TestCursorMoveDoesNotRerun(t *testing.T) {
	m, disp, sess := newTestModel(t)
	m.Init()

	m, _ = typeRune(m, 'a')
	genBefore := sess.Generation()
	cancelsBefore := disp.cancels

	for _, k := range []tea.KeyType{tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd} {
		next, _ := m.Update(tea.KeyMsg{Type: k})
		m = next.(Model)
	}

	if sess.Generation() != genBefore {
		t.Errorf("cursor moves advanced the generation to %d", sess.Generation())
	}
	if disp.cancels != cancelsBefore {
		t.Errorf("cursor moves cancelled the run")
	}
}

func TestScrollDoesNotRerun(t *testing.T) {
	m, disp, sess := newTestModel(t)
	m.Init()
	genBefore := sess.Generation()

	scrollKeys := []tea.KeyType{
		tea.KeyUp, tea.KeyDown,
		tea.KeyCtrlUp, tea.KeyCtrlDown,
		tea.KeyPgUp, tea.KeyPgDown,
	}
	for _, k := range scrollKeys {
		next, _ := m.Update(tea.KeyMsg{Type: k})
		m = next.(Model)
	}

	if sess.Generation() != genBefore {
		t.Errorf("scrolling advanced the generation to %d", sess.Generation())
	}
	if len(disp.starts) != 1 {
		t.Errorf("scrolling dispatched runs: %+v", disp.starts)
	}
}

func TestCtrlScrollMovesViewport(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Init()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 8})
	m = next.(Model)

	var lines strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&lines, "line %d\n", i)
	}
	next, _ = m.Update(chunkMsg{Generation: 1, Data: []byte(lines.String())})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	m = next.(Model)
	if m.output.YOffset != 1 {
		t.Errorf("YOffset = %d after ctrl+down, want 1", m.output.YOffset)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlUp})
	m = next.(Model)
	if m.output.YOffset != 0 {
		t.Errorf("YOffset = %d after ctrl+up, want 0", m.output.YOffset)
	}
}

func TestMouseWheelScrollsViewport(t *testing.T) {
	m, _, sess := newTestModel(t)
	m.Init()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 8})
	m = next.(Model)

	var lines strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&lines, "line %d\n", i)
	}
	next, _ = m.Update(chunkMsg{Generation: 1, Data: []byte(lines.String())})
	m = next.(Model)

	wheelDown := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}
	next, _ = m.Update(wheelDown)
	m = next.(Model)
	if m.output.YOffset == 0 {
		t.Error("wheel down did not reach the viewport")
	}
	if got := sess.Generation(); got != 1 {
		t.Errorf("wheel scrolling advanced the generation to %d", got)
	}
}

func TestStaleChunkDoesNotChangePane(t *testing.T) {
	m, _, sess := newTestModel(t)
	m.Init()

	next, _ := m.Update(chunkMsg{Generation: 1, Data: []byte("first\n")})
	m = next.(Model)

	// New edit supersedes; dispatching its run clears the pane, and the
	// old child's late chunk must not repopulate it.
	m, _ = typeRune(m, '.')
	next, _ = m.Update(debounceMsg{generation: sess.Generation()})
	m = next.(Model)
	if got := sess.Output(); got != "" {
		t.Errorf("Output() = %q, want empty after new run dispatched", got)
	}

	next, _ = m.Update(chunkMsg{Generation: 1, Data: []byte("late stale data\n")})
	m = next.(Model)
	if got := sess.Output(); got != "" {
		t.Errorf("Output() = %q, stale chunk leaked into the pane", got)
	}
}

func TestChunkMsgResubscribes(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Init()

	_, cmd := m.Update(chunkMsg{Generation: 1, Data: []byte("x")})
	if cmd == nil {
		t.Fatal("chunk handling did not resubscribe to the channel")
	}
}

func TestDoneChunkRecordsExit(t *testing.T) {
	m, _, sess := newTestModel(t)
	m.Init()

	next, _ := m.Update(chunkMsg{Generation: 1, Data: []byte("out\n")})
	m = next.(Model)
	next, _ = m.Update(chunkMsg{Generation: 1, Done: true})
	m = next.(Model)

	if sess.Running() {
		t.Error("session still running after done chunk")
	}
	if sess.ExitErr() != nil {
		t.Errorf("ExitErr() = %v", sess.ExitErr())
	}
}

func TestSubmitQuitsAndMarksSubmitted(t *testing.T) {
	m, disp, _ := newTestModel(t)
	m.Init()
	m, _ = typeRune(m, '.')
	m, _ = typeRune(m, 'a')

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if !m.Submitted {
		t.Error("Submitted not set")
	}
	if m.Value() != ".a" {
		t.Errorf("Value() = %q, want %q", m.Value(), ".a")
	}
	if disp.cancels == 0 {
		t.Error("live child not cancelled on submit")
	}
	if cmd == nil {
		t.Fatal("no quit command returned")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("command returned %T, want tea.QuitMsg", cmd())
	}
}

func TestEscQuitsWithoutSubmit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Init()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	if m.Submitted {
		t.Error("esc set Submitted")
	}
	if cmd == nil {
		t.Fatal("no quit command returned")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("command returned %T, want tea.QuitMsg", cmd())
	}
}
