// Package prompt implements the interactive terminal prompts: a search prompt
// over asynchronously fetched candidates (typically rows of a rendered table),
// plus select, input and confirm prompts.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user cancels a prompt with Esc or Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

type runConfig struct {
	input  io.Reader
	output io.Writer
}

// RunOption configures how a prompt is attached to the terminal.
type RunOption func(*runConfig)

// WithInput reads key events from r instead of stdin.
func WithInput(r io.Reader) RunOption {
	return func(c *runConfig) { c.input = r }
}

// WithOutput renders to w instead of stdout.
func WithOutput(w io.Writer) RunOption {
	return func(c *runConfig) { c.output = w }
}

// run drives m inline (no alternate screen) until it quits, so the final
// answer line stays in the scrollback.
func run(ctx context.Context, m tea.Model, opts []RunOption) (tea.Model, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	teaOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.input != nil {
		teaOpts = append(teaOpts, tea.WithInput(cfg.input))
	}
	if cfg.output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(cfg.output))
	}

	final, err := tea.NewProgram(m, teaOpts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

// Search runs a search prompt and returns the value of the chosen candidate.
func Search[T any](ctx context.Context, cfg SearchConfig[T], opts ...RunOption) (T, error) {
	var zero T
	final, err := run(ctx, NewSearch(cfg).WithContext(ctx), opts)
	if err != nil {
		return zero, err
	}
	m, ok := final.(SearchModel[T])
	if !ok {
		return zero, fmt.Errorf("prompt: unexpected model type %T", final)
	}
	v, chosen := m.Result()
	if m.Aborted() || !chosen {
		return zero, ErrAborted
	}
	return v, nil
}

// Select runs a select prompt and returns the chosen value.
func Select[T any](ctx context.Context, cfg SelectConfig[T], opts ...RunOption) (T, error) {
	var zero T
	final, err := run(ctx, NewSelect(cfg), opts)
	if err != nil {
		return zero, err
	}
	m, ok := final.(SelectModel[T])
	if !ok {
		return zero, fmt.Errorf("prompt: unexpected model type %T", final)
	}
	v, chosen := m.Result()
	if !chosen {
		return zero, ErrAborted
	}
	return v, nil
}

// Input runs a text input prompt and returns the accepted answer.
func Input(ctx context.Context, cfg InputConfig, opts ...RunOption) (string, error) {
	final, err := run(ctx, NewInput(cfg), opts)
	if err != nil {
		return "", err
	}
	m, ok := final.(InputModel)
	if !ok {
		return "", fmt.Errorf("prompt: unexpected model type %T", final)
	}
	v, done := m.Result()
	if !done {
		return "", ErrAborted
	}
	return v, nil
}

// Confirm runs a yes/no prompt.
func Confirm(ctx context.Context, cfg ConfirmConfig, opts ...RunOption) (bool, error) {
	final, err := run(ctx, NewConfirm(cfg), opts)
	if err != nil {
		return false, err
	}
	m, ok := final.(ConfirmModel)
	if !ok {
		return false, fmt.Errorf("prompt: unexpected model type %T", final)
	}
	v, done := m.Result()
	if !done {
		return false, ErrAborted
	}
	return v, nil
}
