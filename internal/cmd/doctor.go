package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Short:   "Check ssm-commander installation and dependencies",
	GroupID: groupSetup,
	Long: `Run diagnostic checks on your ssm-commander installation.

This command checks:
- Data directory and settings
- Saved commands file
- Run history database
- AWS CLI, Session Manager plugin and scp
- AWS CLI profiles

Examples:
  ssm-commander doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(a.out, "%sssm-commander Doctor%s\n", colorBold, colorReset)
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
	fmt.Fprintln(a.out)

	results := make([]checkResult, 0, 8)
	results = append(results, checkDirectories(a.paths))
	results = append(results, checkConfiguration(a.paths))
	results = append(results, checkCommandsFile(a))
	results = append(results, checkHistory(a))
	results = append(results, checkPrograms(a.cfg)...)
	results = append(results, checkProfiles(cmd.Context(), a))

	if printResults(a.out, results) {
		fmt.Fprintf(a.out, "%sSome checks failed. Please fix the errors above.%s\n", colorRed, colorReset)
		return errors.New("doctor found errors")
	}
	return nil
}

// printResults writes one line per check and reports whether any failed.
func printResults(w io.Writer, results []checkResult) bool {
	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		var statusIcon string
		switch r.status {
		case "ok":
			statusIcon = colorGreen + "[OK]" + colorReset
		case "warn":
			statusIcon = colorYellow + "[WARN]" + colorReset
			hasWarnings = true
		case "error":
			statusIcon = colorRed + "[ERROR]" + colorReset
			hasErrors = true
		}

		fmt.Fprintf(w, "  %s %s\n", statusIcon, r.name)
		if r.message != "" {
			fmt.Fprintf(w, "       %s%s%s\n", colorDim, r.message, colorReset)
		}
	}

	fmt.Fprintln(w)

	switch {
	case hasErrors:
	case hasWarnings:
		fmt.Fprintf(w, "%sAll critical checks passed, but there are warnings.%s\n", colorYellow, colorReset)
	default:
		fmt.Fprintf(w, "%sAll checks passed!%s\n", colorGreen, colorReset)
	}
	return hasErrors
}

// checkNameDataDir is the label used for the data-directory health check.
const checkNameDataDir = "Data directory"

func checkDirectories(paths *config.Paths) checkResult {
	info, err := os.Stat(paths.BaseDir)
	switch {
	case os.IsNotExist(err):
		return checkResult{
			name:    checkNameDataDir,
			status:  "warn",
			message: fmt.Sprintf("Missing: %s (will be created when needed)", paths.BaseDir),
		}
	case err != nil:
		return checkResult{
			name:    checkNameDataDir,
			status:  "error",
			message: fmt.Sprintf("Error accessing: %s", paths.BaseDir),
		}
	case !info.IsDir():
		return checkResult{
			name:    checkNameDataDir,
			status:  "error",
			message: fmt.Sprintf("Not a directory: %s", paths.BaseDir),
		}
	}
	return checkResult{name: checkNameDataDir, status: "ok", message: paths.BaseDir}
}

func checkConfiguration(paths *config.Paths) checkResult {
	settingsFile := paths.SettingsFile()

	if _, err := config.LoadFromFile(settingsFile); err != nil {
		return checkResult{
			name:    "Configuration",
			status:  "error",
			message: fmt.Sprintf("Failed to load: %v", err),
		}
	}

	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		return checkResult{
			name:    "Configuration",
			status:  "ok",
			message: "Using defaults (no settings file)",
		}
	}

	return checkResult{name: "Configuration", status: "ok", message: settingsFile}
}

func checkCommandsFile(a *app) checkResult {
	saved, err := a.commands.List()
	if err != nil {
		return checkResult{
			name:    "Saved commands",
			status:  "error",
			message: fmt.Sprintf("Failed to read %s: %v", a.commands.Path(), err),
		}
	}
	return checkResult{
		name:    "Saved commands",
		status:  "ok",
		message: fmt.Sprintf("%d in %s", len(saved), a.commands.Path()),
	}
}

func checkHistory(a *app) checkResult {
	st, err := a.history()
	if err != nil {
		return checkResult{
			name:    "Run history",
			status:  "warn",
			message: fmt.Sprintf("Unavailable: %v (runs will not be recorded)", err),
		}
	}
	_ = st.Close()
	return checkResult{name: "Run history", status: "ok", message: a.paths.DatabaseFile()}
}

func checkPrograms(cfg *config.Config) []checkResult {
	programs := []struct {
		name     string
		path     string
		severity string
		missing  string
	}{
		{"AWS CLI", cfg.AWS.CLIPath, "error", "Not found. Install from https://aws.amazon.com/cli/"},
		{"Session Manager plugin", cfg.AWS.SessionManagerPlugin, "error",
			"Not found. Install from https://docs.aws.amazon.com/systems-manager/latest/userguide/session-manager-working-with-install-plugin.html"},
		{"scp", "scp", "warn", "Not found. File Transfer commands need it."},
	}

	results := make([]checkResult, 0, len(programs))
	for _, p := range programs {
		path, err := lookPath(p.path)
		if err != nil {
			results = append(results, checkResult{name: p.name, status: p.severity, message: p.missing})
			continue
		}
		results = append(results, checkResult{name: p.name, status: "ok", message: path})
	}
	return results
}

func checkProfiles(ctx context.Context, a *app) checkResult {
	if _, err := lookPath(a.cfg.AWS.CLIPath); err != nil {
		return checkResult{name: "AWS profiles", status: "warn", message: "Skipped (AWS CLI not found)"}
	}
	names, err := a.aws.ProfileNames(ctx)
	if err != nil {
		return checkResult{name: "AWS profiles", status: "error", message: err.Error()}
	}
	if len(names) == 0 {
		return checkResult{name: "AWS profiles", status: "warn", message: "None configured. Run 'aws configure'."}
	}
	return checkResult{name: "AWS profiles", status: "ok", message: strings.Join(names, ", ")}
}
