// Package session holds the in-memory state for one interactive
// invocation: the fixed base command, the piped input buffered at startup,
// the generation counter that tags each edit-triggered run, and the
// bounded buffer of output produced by the newest run.
package session

import (
	"strings"
)

// Session is owned by the TUI's update loop; nothing here is safe for
// concurrent use and nothing needs to be, since child output reaches the
// loop as messages.
type Session struct {
	Command  string   // target program, fixed for the session
	BaseArgs []string // fixed leading arguments, fixed for the session
	Input    []byte   // piped stdin, buffered once, re-fed to every run; nil when no pipe

	generation uint64 // bumped on every edit that triggers a re-run
	runGen     uint64 // generation of the most recently dispatched run

	maxLines int
	lines    []string
	partial  string // tail of the newest chunk that has no newline yet
	dropped  int    // lines discarded to stay under maxLines

	running bool
	exitErr error // informational; a failing child is not an engine error
}

func New(command string, baseArgs []string, input []byte, maxLines int) *Session {
	return &Session{
		Command:  command,
		BaseArgs: append([]string(nil), baseArgs...),
		Input:    input,
		maxLines: maxLines,
	}
}

// Generation returns the newest edit generation.
func (s *Session) Generation() uint64 { return s.generation }

// NextGeneration advances the edit generation. Called once per
// run-triggering edit, before the debounce timer for it is armed.
func (s *Session) NextGeneration() uint64 {
	s.generation++
	return s.generation
}

// BeginRun records that a run for this generation was dispatched and
// clears the superseded run's output: the buffer never retains data from
// a generation older than the newest dispatched run.
func (s *Session) BeginRun(generation uint64) {
	if generation < s.runGen {
		return
	}
	s.runGen = generation
	s.running = true
	s.exitErr = nil
	s.clearOutput()
}

// Append folds one chunk of child output into the bounded line buffer.
// Chunks tagged with a generation older than the most recently dispatched
// run are discarded, even when they arrive late. Returns false when the
// chunk was discarded.
func (s *Session) Append(generation uint64, data []byte) bool {
	if generation < s.runGen || len(data) == 0 {
		return false
	}

	text := s.partial + string(data)
	parts := strings.Split(text, "\n")
	s.partial = parts[len(parts)-1]
	s.lines = append(s.lines, parts[:len(parts)-1]...)

	// Drop-oldest bounding: the child is never blocked on a full buffer.
	if over := len(s.lines) - s.maxLines; over > 0 {
		s.lines = append(s.lines[:0], s.lines[over:]...)
		s.dropped += over
	}
	return true
}

// FinishRun records completion of a run. Returns false for stale
// generations.
func (s *Session) FinishRun(generation uint64, exitErr error) bool {
	if generation != s.runGen {
		return false
	}
	s.running = false
	s.exitErr = exitErr
	return true
}

func (s *Session) clearOutput() {
	s.lines = nil
	s.partial = ""
	s.dropped = 0
}

// Running reports whether the most recently dispatched run is still alive.
func (s *Session) Running() bool { return s.running }

// ExitErr is the exit error of the last finished run, nil on success.
func (s *Session) ExitErr() error { return s.exitErr }

// Dropped is how many lines the bound discarded for the current run.
func (s *Session) Dropped() int { return s.dropped }

// Lines returns the retained output lines, including the unterminated
// tail of the newest chunk.
func (s *Session) Lines() []string {
	if s.partial == "" {
		return s.lines
	}
	return append(s.lines[:len(s.lines):len(s.lines)], s.partial)
}

// Output returns the retained output as one string for the viewport.
func (s *Session) Output() string {
	return strings.Join(s.Lines(), "\n")
}

// Argv returns the full command line for the given buffer tokens.
func (s *Session) Argv(tokens []string) []string {
	argv := make([]string, 0, 1+len(s.BaseArgs)+len(tokens))
	argv = append(argv, s.Command)
	argv = append(argv, s.BaseArgs...)
	argv = append(argv, tokens...)
	return argv
}
