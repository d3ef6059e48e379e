// Package expect drives the ssm-commander binary through a pseudo terminal
// using go-expect.
//
// The tests need a built binary. Point $SSMC_BINARY at it, or put
// ssm-commander on $PATH; otherwise every test is skipped.
package expect

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
)

// BinaryEnv names the binary under test.
const BinaryEnv = "SSMC_BINARY"

// Key constants for special keys (ANSI escape sequences)
const (
	KeyUp    = "\x1b[A"
	KeyDown  = "\x1b[B"
	KeyEnter = "\r"
	KeyTab   = "\t"
	KeyCtrlC = "\x03"
	KeyEsc   = "\x1b"
)

// Session is one ssm-commander process attached to a console.
type Session struct {
	Console *expect.Console
	Home    string
	Timeout time.Duration
	cmd     *exec.Cmd
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	timeout    time.Duration
	env        []string
	showOutput bool
	commands   string
}

// WithTimeout sets the default timeout for expect operations.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithEnv adds environment variables to the process.
func WithEnv(env ...string) SessionOption {
	return func(c *sessionConfig) {
		c.env = append(c.env, env...)
	}
}

// WithOutput copies the console to stdout for debugging.
func WithOutput(show bool) SessionOption {
	return func(c *sessionConfig) {
		c.showOutput = show
	}
}

// WithCommands seeds the commands file with raw JSON.
func WithCommands(raw string) SessionOption {
	return func(c *sessionConfig) {
		c.commands = raw
	}
}

// Binary returns the path of the binary under test, or "".
func Binary() string {
	if p := os.Getenv(BinaryEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	p, err := exec.LookPath("ssm-commander")
	if err != nil {
		return ""
	}
	return p
}

// SkipIfBinaryMissing skips the test when no binary is available.
func SkipIfBinaryMissing(t testing.TB) {
	t.Helper()
	if Binary() == "" {
		t.Skip("ssm-commander binary not available, set " + BinaryEnv)
	}
}

// Start runs ssm-commander with args in a fresh data directory.
func Start(t testing.TB, args []string, opts ...SessionOption) (*Session, error) {
	t.Helper()
	cfg := &sessionConfig{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	home := t.TempDir()
	if cfg.commands != "" {
		if err := os.WriteFile(filepath.Join(home, "config.json"), []byte(cfg.commands), 0600); err != nil {
			return nil, fmt.Errorf("failed to seed commands: %w", err)
		}
	}

	var consoleOpts []expect.ConsoleOpt
	consoleOpts = append(consoleOpts, expect.WithDefaultTimeout(cfg.timeout))
	if cfg.showOutput {
		consoleOpts = append(consoleOpts, expect.WithStdout(os.Stdout))
	}
	console, err := expect.NewConsole(consoleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console: %w", err)
	}

	cmd := exec.Command(Binary(), args...) //nolint:gosec // G204: binary path comes from the test environment
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()
	cmd.Env = append(os.Environ(), "SSMC_HOME="+home, "TERM=xterm-256color", "COLUMNS=160")
	cmd.Env = append(cmd.Env, cfg.env...)

	if err := cmd.Start(); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to start ssm-commander: %w", err)
	}

	return &Session{Console: console, Home: home, Timeout: cfg.timeout, cmd: cmd}, nil
}

// Send sends text without a newline.
func (s *Session) Send(text string) error {
	_, err := s.Console.Send(text)
	return err
}

// SendKey sends a special key (use Key* constants).
func (s *Session) SendKey(key string) error {
	_, err := s.Console.Send(key)
	return err
}

// Expect waits for an exact string match in the output.
func (s *Session) Expect(str string) (string, error) {
	return s.Console.ExpectString(str)
}

// ExpectTimeout waits for an exact string match with a specific timeout.
func (s *Session) ExpectTimeout(str string, timeout time.Duration) (string, error) {
	return s.Console.Expect(expect.String(str), expect.WithTimeout(timeout))
}

// ExpectRegex waits for a regex pattern match in the output.
func (s *Session) ExpectRegex(pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	return s.Console.Expect(expect.Regexp(re))
}

// Wait waits for the process to exit and returns its exit code.
func (s *Session) Wait() (int, error) {
	err := s.cmd.Wait()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Close closes the console and kills the process if it is still running.
func (s *Session) Close() error {
	if err := s.Console.Close(); err != nil {
		return err
	}
	if s.cmd != nil && s.cmd.Process != nil && s.cmd.ProcessState == nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	return nil
}

// SkipIfShort skips the test if running in short mode.
func SkipIfShort(t interface {
	Skip(args ...interface{})
}, reason string) {
	if testing.Short() {
		t.Skip("skipping in short mode: " + reason)
	}
}
