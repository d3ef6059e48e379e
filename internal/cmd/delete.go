package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/ssm"
	"github.com/runger/ssm-commander/internal/store"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved SSM command",
	GroupID: groupCore,
	Long: `Delete a saved SSM command by name.

The command is shown and you are asked to confirm unless --yes is given.
Run history of the command is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	if !deleteYes {
		ssm.Print(a.out, c)
		fmt.Fprintln(a.out)
		ok, err := a.confirm(cmd.Context(), fmt.Sprintf("Delete SSM Command %q?", name), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Nothing deleted.")
			return nil
		}
	}
	return a.deleteCommand(name)
}

func (a *app) deleteCommand(name string) error {
	if err := a.commands.Delete(name); err != nil {
		return fmt.Errorf("failed to delete command: %w", err)
	}
	a.logger.Info("command deleted", "command", name)
	fmt.Fprintf(a.out, "Successfully deleted SSM Command %q\n", name)
	return nil
}
