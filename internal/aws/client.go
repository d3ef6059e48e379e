// Package aws wraps the AWS CLI calls ssm-commander needs: installation
// checks, profiles, regions and EC2 instances.
package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotInstalled is returned when a required program cannot be run.
var ErrNotInstalled = errors.New("not installed")

// Config configures a Client.
type Config struct {
	CLIPath              string    // Defaults to "aws"
	SessionManagerPlugin string    // Defaults to "session-manager-plugin"
	Runner               Runner    // Defaults to ExecRunner
	Progress             io.Writer // Installation check output; nil keeps checks silent
	Logger               *slog.Logger
}

// Client runs AWS CLI queries. Installation checks run at most once per Client.
type Client struct {
	cfg Config

	mu       sync.Mutex
	cliOK    bool
	pluginOK bool
}

// NewClient creates a client.
func NewClient(cfg Config) *Client {
	if cfg.CLIPath == "" {
		cfg.CLIPath = "aws"
	}
	if cfg.SessionManagerPlugin == "" {
		cfg.SessionManagerPlugin = "session-manager-plugin"
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{cfg: cfg}
}

// EnsureCLI verifies that the AWS CLI can be run.
func (c *Client) EnsureCLI(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cliOK {
		return nil
	}
	if err := c.check(ctx, "AWS CLI", c.cfg.CLIPath, "--version"); err != nil {
		return err
	}
	c.cliOK = true
	return nil
}

// EnsureSessionManagerPlugin verifies that the Session Manager plugin can be run.
func (c *Client) EnsureSessionManagerPlugin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pluginOK {
		return nil
	}
	if err := c.check(ctx, "session-manager-plugin", c.cfg.SessionManagerPlugin); err != nil {
		return err
	}
	c.pluginOK = true
	return nil
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (c *Client) check(ctx context.Context, label, name string, args ...string) error {
	message := fmt.Sprintf("Checking if %s installed..", label)

	var sp *spinner.Spinner
	if c.cfg.Progress != nil {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.cfg.Progress))
		sp.Suffix = " " + message
		sp.Start()
	}

	_, err := c.cfg.Runner.Run(ctx, name, args...)
	c.cfg.Logger.Debug("installation check", "program", name, "error", err)

	if sp != nil {
		sp.Stop()
		if err != nil {
			fmt.Fprintf(c.cfg.Progress, "\r\033[K%s\n",
				failStyle.Render(fmt.Sprintf("✘ %s is not installed. Please install %s and try again.", label, label)))
		} else {
			fmt.Fprintf(c.cfg.Progress, "\r\033[K%s\n", okStyle.Render("✔ "+message))
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", label, ErrNotInstalled)
	}
	return nil
}

// aws runs the CLI after making sure it is installed.
func (c *Client) aws(ctx context.Context, args ...string) ([]byte, error) {
	if err := c.EnsureCLI(ctx); err != nil {
		return nil, err
	}
	c.cfg.Logger.Debug("aws cli", "args", args)
	return c.cfg.Runner.Run(ctx, c.cfg.CLIPath, args...)
}
