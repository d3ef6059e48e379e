// Package main is the entry point for the ssm-commander CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/runger/ssm-commander/internal/cmd"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintf(os.Stderr, "ssm-commander: %s\n", exitErr.Message)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "ssm-commander: %v\n", err)
	os.Exit(cmd.ExitFailure)
}
