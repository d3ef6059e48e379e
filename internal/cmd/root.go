package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/prompt"
)

const (
	groupCore  = "core"
	groupSetup = "setup"
)

// Exit codes beyond the generic failure.
const (
	ExitFailure = 1
	ExitAborted = 130
)

// ExitError is an error that carries a specific exit code.
// An empty Message means the failure was already reported to the user.
type ExitError struct {
	Message string
	Code    int
}

func (e *ExitError) Error() string {
	return e.Message
}

var debugLogs bool

var rootCmd = &cobra.Command{
	Use:   "ssm-commander",
	Short: "save and run AWS SSM session commands",
	Long: `ssm-commander - save AWS SSM session commands and run them by name
  - create: pick a profile, region and EC2 instance from searchable tables
  - list:   search saved commands, then run or delete one
  - run:    open a shell, a port forward or an scp transfer`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyColorMode()
	},
}

// Execute runs the root command.
func Execute() error {
	return silenceAbort(rootCmd.Execute())
}

// silenceAbort turns a cancelled prompt into a quiet ExitAborted.
func silenceAbort(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		return &ExitError{Code: ExitAborted}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Write debug logs to stderr instead of the log file")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	rootCmd.Version = Version

	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)
}
