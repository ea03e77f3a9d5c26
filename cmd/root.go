package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tronikelis/tip/internal/args"
	"github.com/tronikelis/tip/internal/config"
	"github.com/tronikelis/tip/internal/runner"
	"github.com/tronikelis/tip/internal/session"
	"github.com/tronikelis/tip/internal/tui"
)

func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "tip <program> [args...]",
	Short: "Interactively build a command's trailing arguments against piped input",
	Long: `tip buffers whatever is piped into it, then lets you edit the trailing
arguments of <program> while watching its output update live. Every edit
re-runs the program against the same buffered input.

    curl -s https://api.example.com | tip jq

Enter accepts the current arguments and replays the command against real
stdout so the result can be piped onward; Esc quits without output.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, argv []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if debugFlag {
			f, err := tea.LogToFile("tip-debug.log", "debug")
			if err != nil {
				return err
			}
			defer f.Close()
		}

		input, err := readPipedInput(cfg.MaxInputBytes)
		if err != nil {
			return fmt.Errorf("reading piped input: %w", err)
		}

		program, baseArgs := argv[0], argv[1:]
		sess := session.New(program, baseArgs, input, cfg.MaxOutputLines)
		run := runner.New(program, baseArgs, input)

		opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
		if input != nil {
			// stdin is the data pipe; key events come from the terminal.
			opts = append(opts, tea.WithInputTTY())
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			// stdout is reserved for the replayed result; render the
			// interactive frames on stderr instead.
			opts = append(opts, tea.WithOutput(os.Stderr))
		}

		p := tea.NewProgram(tui.NewModel(sess, run, cfg.Debounce()), opts...)
		finalModel, err := p.Run()
		if err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}

		final := finalModel.(tui.Model)
		if final.Submitted {
			// Replay the accepted command against the real stdout, full
			// output, no pane bound.
			return run.Replay(cmd.Context(), args.Split(final.Value()), os.Stdout, os.Stderr)
		}

		return nil
	},
}

// readPipedInput buffers stdin when it is a pipe, up to maxBytes; anything
// beyond the cap is truncated. Returns nil when stdin is the terminal.
func readPipedInput(maxBytes int) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(os.Stdin, int64(maxBytes)))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "Write a debug log to tip-debug.log")
}
