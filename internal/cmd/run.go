package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	sclog "github.com/runger/ssm-commander/internal/log"
	"github.com/runger/ssm-commander/internal/prompt"
	"github.com/runger/ssm-commander/internal/ssm"
	"github.com/runger/ssm-commander/internal/storage"
	"github.com/runger/ssm-commander/internal/store"
)

var runCmd = &cobra.Command{
	Use:     "run <name>",
	Short:   "Execute a saved SSM command",
	GroupID: groupCore,
	Long: `Execute a saved SSM command by name.

The command is printed for review, the AWS CLI and the Session Manager
plugin are checked, and the session starts attached to this terminal.
File Transfer commands ask for the direction and paths of the copy first.

The exit code of the session becomes the exit code of ssm-commander.

Examples:
  ssm-commander run db-tunnel
  ssm-commander history db-tunnel   # Past runs of that command`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	c, err := a.commands.Find(name)
	if errors.Is(err, store.ErrNotFound) {
		return &ExitError{
			Code:    ExitFailure,
			Message: fmt.Sprintf("No SSM command found with the name '%s'. Please check the name and try again.", name),
		}
	}
	if err != nil {
		return err
	}

	ssm.Print(a.out, c)
	return a.execute(cmd.Context(), c)
}

// execute starts the session for c and records it in the run history.
func (a *app) execute(ctx context.Context, c *ssm.Command) error {
	if err := a.aws.EnsureCLI(ctx); err != nil {
		return notInstalled(err)
	}
	if err := a.aws.EnsureSessionManagerPlugin(ctx); err != nil {
		return notInstalled(err)
	}

	line, err := a.commandLine(ctx, c)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%sRunning SSM Command %q%s\n", colorCyan, c.Name, colorReset)
	fmt.Fprintf(a.out, "%s%s%s\n\n", colorCyan, line, colorReset)

	rec := a.recordStart(ctx, c, line)
	sclog.LogSessionStart(a.logger, c.Name, rec.runID(), line)

	code, runErr := a.sessions.Run(ctx, line)
	if runErr != nil {
		code = -1
	}
	sclog.LogSessionEnd(a.logger, c.Name, rec.runID(), code)
	rec.end(code)

	if runErr != nil {
		return fmt.Errorf("failed to run %q: %w", c.Name, runErr)
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// commandLine builds the line to run, asking for transfer operands when
// c copies files.
func (a *app) commandLine(ctx context.Context, c *ssm.Command) (string, error) {
	if c.Type != ssm.TypeFileTransfer {
		return ssm.Build(c, a.sessions.GOOS())
	}

	dir, err := selectOne(ctx, a, "Which direction would you like to transfer files?", []prompt.Item[ssm.Direction]{
		{Value: ssm.Upload, Name: "Upload", Description: "Copy a local file to the EC2 instance."},
		{Value: ssm.Download, Name: "Download", Description: "Copy a file from the EC2 instance to this machine."},
	})
	if err != nil {
		return "", err
	}

	local, err := a.input(ctx, prompt.InputConfig{
		Message:     "Enter the local file path",
		Description: "Path on this machine. Directories need a trailing slash when downloading.",
		Required:    true,
	})
	if err != nil {
		return "", err
	}

	remote, err := a.input(ctx, prompt.InputConfig{
		Message:     "Enter the remote file path",
		Description: "Path on the EC2 instance.",
		Required:    true,
	})
	if err != nil {
		return "", err
	}

	user, err := a.input(ctx, prompt.InputConfig{
		Message:     "Enter the login user of the EC2 instance",
		Description: "The SSH user that scp authenticates as.",
		Default:     ssm.DefaultTransferUser,
		Required:    true,
	})
	if err != nil {
		return "", err
	}

	return ssm.BuildTransfer(c, a.sessions.GOOS(), ssm.Transfer{
		Direction:  dir,
		LocalPath:  local,
		RemotePath: remote,
		User:       user,
	})
}

// runRecord is a run in progress. A nil store means history is unavailable
// and the record is a no-op.
type runRecord struct {
	a     *app
	store storage.Store
	run   *storage.Run
}

func (r *runRecord) runID() string {
	if r.run == nil {
		return ""
	}
	return r.run.RunID
}

func (a *app) recordStart(ctx context.Context, c *ssm.Command, line string) *runRecord {
	rec := &runRecord{a: a}
	if a.history == nil {
		return rec
	}

	st, err := a.history()
	if err != nil {
		sclog.LogHistoryError(a.logger, "open", err)
		return rec
	}
	run := &storage.Run{
		CommandName: c.Name,
		CommandType: string(c.Type),
		Profile:     c.ProfileName,
		Region:      c.Region,
		InstanceID:  c.InstanceID,
		CommandLine: line,
	}
	if err := st.RecordStart(ctx, run); err != nil {
		sclog.LogHistoryError(a.logger, "record_start", err)
		_ = st.Close()
		return rec
	}
	rec.store, rec.run = st, run
	return rec
}

// end uses a fresh context so an interrupted session is still recorded.
func (r *runRecord) end(exitCode int) {
	if r.store == nil {
		return
	}
	defer r.store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.RecordEnd(ctx, r.run.RunID, exitCode, time.Now().UnixMilli()); err != nil {
		sclog.LogHistoryError(r.a.logger, "record_end", err)
	}
}
