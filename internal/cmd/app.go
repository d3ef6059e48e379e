package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/aws"
	"github.com/runger/ssm-commander/internal/config"
	sclog "github.com/runger/ssm-commander/internal/log"
	"github.com/runger/ssm-commander/internal/prompt"
	"github.com/runger/ssm-commander/internal/ssm"
	"github.com/runger/ssm-commander/internal/storage"
	"github.com/runger/ssm-commander/internal/store"
	"github.com/runger/ssm-commander/internal/table"
)

// sessionRunner executes a built command line attached to the terminal.
type sessionRunner interface {
	Run(ctx context.Context, line string) (int, error)
	GOOS() string
}

// app holds what the subcommands share for one invocation.
type app struct {
	paths    *config.Paths
	cfg      *config.Config
	logger   *slog.Logger
	aws      *aws.Client
	commands *store.Store
	sessions sessionRunner
	history  func() (storage.Store, error)
	theme    prompt.Theme
	prompts  []prompt.RunOption

	out    io.Writer
	errOut io.Writer

	closers []io.Closer
}

// newApp is replaced in tests.
var newApp = loadApp

func loadApp(cmd *cobra.Command) (*app, error) {
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	cfg, err := config.LoadFromFile(paths.SettingsFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{
		paths:  paths,
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	if err := a.setupLogger(); err != nil {
		return nil, err
	}

	a.aws = aws.NewClient(aws.Config{
		CLIPath:              cfg.AWS.CLIPath,
		SessionManagerPlugin: cfg.AWS.SessionManagerPlugin,
		Progress:             a.errOut,
		Logger:               a.logger,
	})
	a.commands = store.Open(paths.CommandsFile())
	a.sessions = ssm.NewRunner(ssm.RunnerConfig{Logger: a.logger})
	a.history = func() (storage.Store, error) {
		return storage.NewSQLiteStore(paths.DatabaseFile())
	}
	a.theme = prompt.DefaultTheme()
	a.theme.HelpMode = prompt.HelpMode(cfg.Prompt.HelpMode)

	a.logger.Debug("loaded configuration",
		"settings", paths.SettingsFile(),
		"commands", paths.CommandsFile(),
		"page_size", cfg.Prompt.PageSize)
	return a, nil
}

func (a *app) setupLogger() error {
	if debugLogs {
		a.logger = sclog.New(&sclog.Config{Output: a.errOut, Debug: true})
		return nil
	}

	level, err := sclog.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	f, err := sclog.OpenFile(a.logFile())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, f)
	a.logger = sclog.New(&sclog.Config{Output: f, Level: level})
	return nil
}

func (a *app) logFile() string {
	if a.cfg.Logging.File != "" {
		return a.cfg.Logging.File
	}
	return a.paths.LogFile()
}

// Close releases everything opened by loadApp.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) pageSize() int {
	return a.cfg.Prompt.PageSize
}

func (a *app) input(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	cfg.Theme = &a.theme
	return prompt.Input(ctx, cfg, a.prompts...)
}

func (a *app) confirm(ctx context.Context, message string, def bool) (bool, error) {
	return prompt.Confirm(ctx, prompt.ConfirmConfig{Message: message, Default: def, Theme: &a.theme}, a.prompts...)
}

func selectOne[T any](ctx context.Context, a *app, message string, choices []prompt.Item[T]) (T, error) {
	return prompt.Select(ctx, prompt.SelectConfig[T]{
		Message:  message,
		Choices:  choices,
		PageSize: a.pageSize(),
		Theme:    &a.theme,
	}, a.prompts...)
}

// searchTable renders records as a table and lets the user pick one row.
func searchTable[R table.Record](ctx context.Context, a *app, message string, fields, labels []string, records []R) (R, error) {
	var zero R
	t, err := table.Build(fields, records, labels)
	if err != nil {
		return zero, err
	}
	a.warnIfNarrow(t.Header)

	return prompt.Search(ctx, prompt.SearchConfig[R]{
		Message:  message,
		Header:   t.Header,
		Footer:   t.Footer,
		Source:   prompt.TableSource(t),
		PageSize: a.pageSize(),
		Theme:    &a.theme,
	}, a.prompts...)
}

// warnIfNarrow reports a table whose rows would wrap in the terminal.
func (a *app) warnIfNarrow(header string) {
	first, _, _ := strings.Cut(header, "\n")
	need, have := lipgloss.Width(first), terminalWidth()
	if need <= have {
		return
	}
	a.logger.Debug("table wider than terminal", "table", need, "terminal", have)
	fmt.Fprintf(a.errOut, "%sWarning:%s the table is %d columns wide but the terminal has %d; widen the window to keep rows on one line.\n",
		colorYellow, colorReset, need, have)
}

// notInstalled hides errors the installation check already printed.
func notInstalled(err error) error {
	if errors.Is(err, aws.ErrNotInstalled) {
		return &ExitError{Code: ExitFailure}
	}
	return err
}
