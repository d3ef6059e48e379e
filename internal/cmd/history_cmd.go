package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:     "history [name]",
	Short:   "Show past runs of saved commands",
	GroupID: groupCore,
	Long: `Show past runs of saved SSM commands.

Every "run" (and every run started from "list" or "create") is recorded
in a local SQLite database with its command line and exit code.
With a name argument, only runs of that command are shown.

Examples:
  ssm-commander history                 # Show last 20 runs
  ssm-commander history --limit=50      # Show last 50 runs
  ssm-commander history db-tunnel       # Runs of one command
  ssm-commander history --format=json   # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", storage.DefaultRunLimit, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "Output format: text or json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFormat != "text" && historyFormat != "json" {
		return fmt.Errorf("invalid format %q (must be text or json)", historyFormat)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.history()
	if err != nil {
		fmt.Fprintf(a.out, "No history available. Database not found at: %s\n", a.paths.DatabaseFile())
		return nil
	}
	defer st.Close()

	query := storage.RunQuery{Limit: historyLimit}
	if len(args) > 0 {
		query.CommandName = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	runs, err := st.QueryRuns(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	if historyFormat == "json" {
		return writeRunsJSON(a.out, runs)
	}

	if len(runs) == 0 {
		if len(args) > 0 {
			fmt.Fprintf(a.out, "No runs found for '%s'\n", args[0])
		} else {
			fmt.Fprintln(a.out, "No run history available.")
		}
		return nil
	}

	// Oldest at top, like a terminal scrollback
	for i := len(runs) - 1; i >= 0; i-- {
		printRun(a.out, runs[i])
	}

	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "%sShowing %d run(s)%s\n", colorDim, len(runs), colorReset)
	return nil
}

func printRun(w io.Writer, r storage.Run) {
	timestamp := time.UnixMilli(r.StartedAtUnixMs).Format("2006-01-02 15:04:05")

	var exitCode string
	switch {
	case r.ExitCode == nil:
		exitCode = colorDim + "-" + colorReset
	case *r.ExitCode == 0:
		exitCode = colorGreen + "0" + colorReset
	default:
		exitCode = colorRed + fmt.Sprintf("%d", *r.ExitCode) + colorReset
	}

	fmt.Fprintf(w, "%s%s%s  [%s]  %s%s%s  %s", colorDim, timestamp, colorReset, exitCode, colorCyan, r.CommandName, colorReset, r.CommandLine)

	if r.EndedAtUnixMs != nil {
		fmt.Fprintf(w, "  %s(%s)%s", colorDim, formatDurationMs(*r.EndedAtUnixMs-r.StartedAtUnixMs), colorReset)
	}

	fmt.Fprintln(w)
}

func formatDurationMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

type runJSON struct {
	RunID       string `json:"run_id"`
	Command     string `json:"command"`
	Type        string `json:"type"`
	Profile     string `json:"profile"`
	Region      string `json:"region,omitempty"`
	InstanceID  string `json:"instance_id"`
	CommandLine string `json:"command_line"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at,omitempty"`
	ExitCode    *int   `json:"exit_code"`
}

func writeRunsJSON(w io.Writer, runs []storage.Run) error {
	out := make([]runJSON, 0, len(runs))
	for _, r := range runs {
		j := runJSON{
			RunID:       r.RunID,
			Command:     r.CommandName,
			Type:        r.CommandType,
			Profile:     r.Profile,
			Region:      r.Region,
			InstanceID:  r.InstanceID,
			CommandLine: r.CommandLine,
			StartedAt:   time.UnixMilli(r.StartedAtUnixMs).UTC().Format(time.RFC3339),
			ExitCode:    r.ExitCode,
		}
		if r.EndedAtUnixMs != nil {
			j.EndedAt = time.UnixMilli(*r.EndedAtUnixMs).UTC().Format(time.RFC3339)
		}
		out = append(out, j)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
