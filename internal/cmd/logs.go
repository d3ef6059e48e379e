package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Short:   "View the ssm-commander log",
	GroupID: groupSetup,
	Long: `View the ssm-commander log file.

By default, shows the last 50 lines of the log file.
Use --follow to continuously monitor new log entries.
The file is logs/ssm-commander.log in the data directory unless
logging.file is set.

Examples:
  ssm-commander logs              # Show last 50 lines
  ssm-commander logs -f           # Follow log output
  ssm-commander logs --lines=100  # Show last 100 lines`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of lines to show")
}

func runLogs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logFile := a.logFile()
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		fmt.Fprintf(a.out, "No log file found at: %s\n", logFile)
		return nil
	}

	if logsFollow {
		return followLogs(cmd.Context(), a.out, logFile)
	}

	return tailLogs(a.out, logFile, logsLines)
}

// tailLogs prints the last n lines of filename, reading backwards in chunks.
func tailLogs(w io.Writer, filename string, n int) error {
	if n <= 0 {
		return nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	size := stat.Size()
	if size == 0 {
		fmt.Fprintln(w, "Log file is empty.")
		return nil
	}

	lines := make([]string, 0, n)
	bufSize := int64(4096)
	offset := size
	remainder := "" // Partial line carried between chunks

	for len(lines) < n && offset > 0 {
		readSize := bufSize
		if offset < bufSize {
			readSize = offset
		}
		offset -= readSize

		buf := make([]byte, readSize)
		_, err := f.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read log file: %w", err)
		}

		chunkLines := splitLines(string(buf) + remainder)

		// The first element may be a partial line unless we reached the start
		if offset > 0 && len(chunkLines) > 0 {
			remainder = chunkLines[0]
			chunkLines = chunkLines[1:]
		} else {
			remainder = ""
		}

		for i := len(chunkLines) - 1; i >= 0 && len(lines) < n; i-- {
			if chunkLines[i] != "" || len(lines) > 0 {
				lines = append([]string{chunkLines[i]}, lines...)
			}
		}
	}

	if remainder != "" && len(lines) < n {
		lines = append([]string{remainder}, lines...)
	}

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func followLogs(ctx context.Context, w io.Writer, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(w, "Following %s (Ctrl+C to stop)...\n\n", filename)

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			fmt.Fprint(w, line)
			continue
		}
		if err != io.EOF {
			return fmt.Errorf("error reading log: %w", err)
		}
		if line != "" {
			fmt.Fprint(w, line)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(100 * time.Millisecond):
		}
	}
}
