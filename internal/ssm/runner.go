package ssm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/google/shlex"
)

// RunnerConfig configures how session commands are executed.
type RunnerConfig struct {
	Logger *slog.Logger
	GOOS   string // Defaults to runtime.GOOS
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes built command lines attached to the terminal.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner creates a runner; unset streams default to the process's own.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Runner{cfg: cfg}
}

// GOOS reports the operating system command lines are built for.
func (r *Runner) GOOS() string {
	return r.cfg.GOOS
}

// Run executes line and returns the child's exit code. A non-zero exit is
// not an error; err is set only when the process could not be run.
func (r *Runner) Run(ctx context.Context, line string) (int, error) {
	cmd, err := r.command(ctx, line)
	if err != nil {
		return -1, err
	}
	cmd.Stdin = r.cfg.Stdin
	cmd.Stdout = r.cfg.Stdout
	cmd.Stderr = r.cfg.Stderr

	// Ctrl+C belongs to the interactive session while it runs.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	r.cfg.Logger.Debug("running session command", "args", cmd.Args)
	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.cfg.Logger.Debug("session command exited", "exit_code", exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", cmd.Path, err)
}

func (r *Runner) command(ctx context.Context, line string) (*exec.Cmd, error) {
	if r.cfg.GOOS == "windows" {
		//nolint:gosec // line is built from the user's own saved command.
		return exec.CommandContext(ctx, "powershell", "-Command", line), nil
	}
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command line: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty command line")
	}
	//nolint:gosec // args are built from the user's own saved command.
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}
