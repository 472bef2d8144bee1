// Package hook provides the post-run extension point. A hook receives the
// completed run's report for custom post-processing (metrics reporting,
// chat notifications). Hook failures are never fatal to the run.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Hook is invoked after a sweep run completes with read access to the
// run's report.
type Hook interface {
	AfterRun(ctx context.Context, report any) error
}

// Noop is the default hook; it does nothing.
type Noop struct{}

// AfterRun implements Hook.
func (Noop) AfterRun(context.Context, any) error {
	return nil
}

// Exec runs an external command with the JSON-encoded report on stdin.
// The command is run through the shell so configured hooks can use pipes
// and arguments.
type Exec struct {
	Command string
}

// NewExec creates an exec hook for the given shell command.
func NewExec(command string) *Exec {
	return &Exec{Command: command}
}

// AfterRun implements Hook.
func (h *Exec) AfterRun(ctx context.Context, report any) error {
	if h.Command == "" {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for hook: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hook command failed: %w", err)
	}
	return nil
}
