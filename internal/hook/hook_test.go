package hook

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoop(t *testing.T) {
	if err := (Noop{}).AfterRun(context.Background(), map[string]int{"closed": 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecReceivesReportOnStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	h := NewExec("cat > " + out)

	report := map[string]any{"closed": 3, "dryRun": false}
	if err := h.AfterRun(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook output not written: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("hook received invalid JSON: %v", err)
	}
	if got["closed"] != float64(3) {
		t.Errorf("expected closed=3 in hook input, got %v", got["closed"])
	}
}

func TestExecCommandFailure(t *testing.T) {
	h := NewExec("exit 3")
	err := h.AfterRun(context.Background(), map[string]int{})
	if err == nil {
		t.Fatal("expected error from failing hook command")
	}
	if !strings.Contains(err.Error(), "hook command failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecEmptyCommand(t *testing.T) {
	h := NewExec("")
	if err := h.AfterRun(context.Background(), map[string]int{}); err != nil {
		t.Errorf("empty command should be a no-op, got %v", err)
	}
}
