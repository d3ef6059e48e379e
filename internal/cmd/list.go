package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/prompt"
	"github.com/runger/ssm-commander/internal/ssm"
)

// Columns of the saved command table.
var commandFields = []string{"name", "profileName", "region", "instanceName", "instanceId", "commandType"}

const (
	actionRun    = "Run"
	actionDelete = "Delete"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Display all saved SSM commands",
	GroupID: groupCore,
	Long: `Display all saved SSM commands in a searchable table.

Type to filter the rows, use the arrow keys to move and Enter to pick a
command. You are then asked whether to run or delete it.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.commands.List()
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		return &ExitError{
			Code:    ExitFailure,
			Message: `No saved SSM commands found. Create one using the "create" command.`,
		}
	}

	records := make([]*ssm.Command, len(saved))
	for i := range saved {
		records[i] = &saved[i]
	}

	ctx := cmd.Context()
	c, err := searchTable(ctx, a, "Select an SSM Command", commandFields, nil, records)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	ssm.Print(a.out, c)
	fmt.Fprintln(a.out)

	action, err := selectOne(ctx, a, "What would you like to do with this command?", []prompt.Item[string]{
		{Value: actionRun},
		{Value: actionDelete},
	})
	if err != nil {
		return err
	}

	switch action {
	case actionRun:
		return a.execute(ctx, c)
	case actionDelete:
		return a.deleteCommand(c.Name)
	}
	return nil
}
