// Package runner spawns the target program and streams its output back as
// generation-tagged chunks. One runner serves the whole session and keeps
// at most one child alive: starting a run kills the previous one first.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Chunk is one piece of child output tagged with the generation of the
// run that produced it. Done marks the end of a run; Err then carries the
// exit error, if any. Exit status is informational, not an engine error.
type Chunk struct {
	Generation uint64
	Data       []byte
	Done       bool
	Err        error
}

// Dispatcher is the runner surface the TUI drives. Kept small so tests
// can substitute a fake.
type Dispatcher interface {
	// Start kills the live child, if any, and spawns a new run for this
	// generation. It never blocks on the child.
	Start(generation uint64, extra []string)
	// Cancel kills the live child. Safe to call when none is running.
	Cancel()
	// Chunks delivers output from all runs in child emission order.
	Chunks() <-chan Chunk
}

// Runner executes program baseArgs... extra... with the buffered input on
// stdin. stdout and stderr land in the same chunk stream, in arrival
// order, the way the user would see them in a terminal.
type Runner struct {
	program  string
	baseArgs []string
	input    []byte // nil when nothing was piped; children then read EOF immediately

	chunks chan Chunk

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(program string, baseArgs []string, input []byte) *Runner {
	return &Runner{
		program:  program,
		baseArgs: append([]string(nil), baseArgs...),
		input:    input,
		chunks:   make(chan Chunk, 64),
	}
}

func (r *Runner) Chunks() <-chan Chunk { return r.chunks }

func (r *Runner) Start(generation uint64, extra []string) {
	ctx := r.supersede()

	argv := append(append([]string(nil), r.baseArgs...), extra...)
	cmd := exec.CommandContext(ctx, r.program, argv...)
	if r.input != nil {
		// exec copies the reader into the child and closes its stdin at
		// EOF, so every run observes the same bytes and end-of-stream.
		cmd.Stdin = bytes.NewReader(r.input)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.fail(ctx, generation, err)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.fail(ctx, generation, err)
		return
	}
	if err := cmd.Start(); err != nil {
		r.fail(ctx, generation, err)
		return
	}

	go func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.readStream(ctx, generation, stdout)
		}()
		go func() {
			defer wg.Done()
			r.readStream(ctx, generation, stderr)
		}()
		wg.Wait()

		err := cmd.Wait()
		r.emit(ctx, Chunk{Generation: generation, Done: true, Err: err})
	}()
}

func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// supersede cancels the previous run's context and installs a fresh one.
// Cancelling kills the child and mutes its remaining chunks; its pipes
// are still drained so it never blocks while dying.
func (r *Runner) supersede() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	return ctx
}

// fail surfaces a spawn failure as pane content. A missing or
// non-executable program must leave the prompt editable.
func (r *Runner) fail(ctx context.Context, generation uint64, err error) {
	r.emit(ctx, Chunk{Generation: generation, Data: []byte(fmt.Sprintf("tip: %v\n", err))})
	r.emit(ctx, Chunk{Generation: generation, Done: true, Err: err})
}

func (r *Runner) readStream(ctx context.Context, generation uint64, stream io.Reader) {
	buf := make([]byte, 8192)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			r.emit(ctx, Chunk{Generation: generation, Data: data})
		}
		if err != nil {
			// EOF or pipe error both mean end-of-output for this run.
			return
		}
	}
}

// emit delivers a chunk unless the run was superseded. Returning instead
// of blocking keeps the reader goroutines draining a dying child.
func (r *Runner) emit(ctx context.Context, c Chunk) {
	select {
	case r.chunks <- c:
	case <-ctx.Done():
	}
}

// Replay runs the command once against real stdio, unbounded. Used after
// the user accepts the current arguments so the final result can be piped
// onward. The informational exit status of the child is discarded; only
// spawn failures are reported.
func (r *Runner) Replay(ctx context.Context, extra []string, stdout, stderr io.Writer) error {
	argv := append(append([]string(nil), r.baseArgs...), extra...)
	cmd := exec.CommandContext(ctx, r.program, argv...)
	if r.input != nil {
		cmd.Stdin = bytes.NewReader(r.input)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if _, exited := err.(*exec.ExitError); exited {
		return nil
	}
	return err
}
