package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"Issues.DaysBeforeStale", p.Issues.DaysBeforeStale, 60},
		{"Issues.DaysBeforeClose", p.Issues.DaysBeforeClose, 7},
		{"PullRequests.DaysBeforeStale", p.PullRequests.DaysBeforeStale, 60},
		{"PullRequests.DaysBeforeClose", p.PullRequests.DaysBeforeClose, 7},
		{"OperationsPerRun", p.OperationsPerRun, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("DefaultPolicy().%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}

	if p.Issues.StaleLabel != "stale" || p.PullRequests.StaleLabel != "stale" {
		t.Errorf("expected default stale label 'stale', got %q / %q",
			p.Issues.StaleLabel, p.PullRequests.StaleLabel)
	}
	if p.Issues.CloseReason != "not_planned" {
		t.Errorf("expected default close reason 'not_planned', got %q", p.Issues.CloseReason)
	}
	if p.PullRequests.CloseReason != "" {
		t.Errorf("close reason should not apply to pull requests, got %q", p.PullRequests.CloseReason)
	}
	if !p.RemoveStaleWhenUpdated {
		t.Error("expected RemoveStaleWhenUpdated to default to true")
	}
}

func TestResolvePolicy(t *testing.T) {
	t.Run("returns defaults for empty config", func(t *testing.T) {
		p := (&Config{}).ResolvePolicy()

		if p.Issues.DaysBeforeStale != DefaultDaysBeforeStale {
			t.Errorf("Issues.DaysBeforeStale = %d, want %d", p.Issues.DaysBeforeStale, DefaultDaysBeforeStale)
		}
		if p.OperationsPerRun != DefaultOperationsPerRun {
			t.Errorf("OperationsPerRun = %d, want %d", p.OperationsPerRun, DefaultOperationsPerRun)
		}
	})

	t.Run("generic thresholds apply to both kinds", func(t *testing.T) {
		cfg := &Config{
			DaysBeforeStale: intPtr(30),
			DaysBeforeClose: intPtr(14),
		}
		p := cfg.ResolvePolicy()

		if p.Issues.DaysBeforeStale != 30 || p.PullRequests.DaysBeforeStale != 30 {
			t.Errorf("DaysBeforeStale = %d / %d, want 30 for both",
				p.Issues.DaysBeforeStale, p.PullRequests.DaysBeforeStale)
		}
		if p.Issues.DaysBeforeClose != 14 || p.PullRequests.DaysBeforeClose != 14 {
			t.Errorf("DaysBeforeClose = %d / %d, want 14 for both",
				p.Issues.DaysBeforeClose, p.PullRequests.DaysBeforeClose)
		}
	})

	t.Run("issue-specific thresholds override only issues", func(t *testing.T) {
		cfg := &Config{
			DaysBeforeStale:      intPtr(30),
			DaysBeforeIssueStale: intPtr(90),
			DaysBeforeIssueClose: intPtr(21),
		}
		p := cfg.ResolvePolicy()

		if p.Issues.DaysBeforeStale != 90 {
			t.Errorf("Issues.DaysBeforeStale = %d, want 90", p.Issues.DaysBeforeStale)
		}
		if p.PullRequests.DaysBeforeStale != 30 {
			t.Errorf("PullRequests.DaysBeforeStale = %d, want 30", p.PullRequests.DaysBeforeStale)
		}
		if p.Issues.DaysBeforeClose != 21 {
			t.Errorf("Issues.DaysBeforeClose = %d, want 21", p.Issues.DaysBeforeClose)
		}
		if p.PullRequests.DaysBeforeClose != DefaultDaysBeforeClose {
			t.Errorf("PullRequests.DaysBeforeClose = %d, want %d",
				p.PullRequests.DaysBeforeClose, DefaultDaysBeforeClose)
		}
	})

	t.Run("explicit zero disables the mark phase", func(t *testing.T) {
		cfg := &Config{DaysBeforeStale: intPtr(0)}
		p := cfg.ResolvePolicy()

		if p.Issues.DaysBeforeStale != 0 {
			t.Errorf("Issues.DaysBeforeStale = %d, want 0", p.Issues.DaysBeforeStale)
		}
	})

	t.Run("per-kind labels and messages", func(t *testing.T) {
		cfg := &Config{
			StaleIssueLabel:   "no-activity",
			StalePRLabel:      "abandoned",
			StaleIssueMessage: "issue going stale",
			StalePRMessage:    "pr going stale",
			CloseIssueMessage: "closing issue",
			ClosePRMessage:    "closing pr",
			CloseIssueReason:  "completed",
		}
		p := cfg.ResolvePolicy()

		if p.Issues.StaleLabel != "no-activity" || p.PullRequests.StaleLabel != "abandoned" {
			t.Errorf("unexpected stale labels: %q / %q", p.Issues.StaleLabel, p.PullRequests.StaleLabel)
		}
		if p.Issues.StaleMessage != "issue going stale" || p.PullRequests.StaleMessage != "pr going stale" {
			t.Errorf("unexpected stale messages: %q / %q", p.Issues.StaleMessage, p.PullRequests.StaleMessage)
		}
		if p.Issues.CloseMessage != "closing issue" || p.PullRequests.CloseMessage != "closing pr" {
			t.Errorf("unexpected close messages: %q / %q", p.Issues.CloseMessage, p.PullRequests.CloseMessage)
		}
		if p.Issues.CloseReason != "completed" {
			t.Errorf("Issues.CloseReason = %q, want 'completed'", p.Issues.CloseReason)
		}
	})

	t.Run("exempt and any-of labels", func(t *testing.T) {
		cfg := &Config{
			ExemptIssueLabels: []string{"pinned", "security"},
			ExemptPRLabels:    []string{"work-in-progress"},
			AnyOfLabels:       []string{"needs-info"},
		}
		p := cfg.ResolvePolicy()

		if len(p.Issues.ExemptLabels) != 2 || p.Issues.ExemptLabels[0] != "pinned" {
			t.Errorf("unexpected issue exempt labels: %v", p.Issues.ExemptLabels)
		}
		if len(p.PullRequests.ExemptLabels) != 1 || p.PullRequests.ExemptLabels[0] != "work-in-progress" {
			t.Errorf("unexpected PR exempt labels: %v", p.PullRequests.ExemptLabels)
		}
		if len(p.AnyOfLabels) != 1 || p.AnyOfLabels[0] != "needs-info" {
			t.Errorf("unexpected any-of labels: %v", p.AnyOfLabels)
		}
	})

	t.Run("remove and operations overrides", func(t *testing.T) {
		cfg := &Config{
			RemoveStaleWhenUpdated: boolPtr(false),
			OperationsPerRun:       intPtr(5),
		}
		p := cfg.ResolvePolicy()

		if p.RemoveStaleWhenUpdated {
			t.Error("expected RemoveStaleWhenUpdated to be false")
		}
		if p.OperationsPerRun != 5 {
			t.Errorf("OperationsPerRun = %d, want 5", p.OperationsPerRun)
		}
	})
}

func TestMergeConfig(t *testing.T) {
	t.Run("local values take precedence", func(t *testing.T) {
		global := &Config{
			DefaultFormat:   "table",
			Repos:           []string{"global/repo"},
			DaysBeforeStale: intPtr(60),
			StaleIssueLabel: "stale",
		}
		local := &Config{
			DefaultFormat:   "json",
			DaysBeforeStale: intPtr(30),
		}

		merged := mergeConfig(global, local)

		if merged.DefaultFormat != "json" {
			t.Errorf("DefaultFormat = %q, want 'json'", merged.DefaultFormat)
		}
		if *merged.DaysBeforeStale != 30 {
			t.Errorf("DaysBeforeStale = %d, want 30", *merged.DaysBeforeStale)
		}
		// Unset local values preserve global values
		if len(merged.Repos) != 1 || merged.Repos[0] != "global/repo" {
			t.Errorf("Repos = %v, want [global/repo]", merged.Repos)
		}
		if merged.StaleIssueLabel != "stale" {
			t.Errorf("StaleIssueLabel = %q, want 'stale'", merged.StaleIssueLabel)
		}
	})

	t.Run("explicit local zero overrides global pointer", func(t *testing.T) {
		global := &Config{OperationsPerRun: intPtr(30)}
		local := &Config{OperationsPerRun: intPtr(1)}

		merged := mergeConfig(global, local)
		if *merged.OperationsPerRun != 1 {
			t.Errorf("OperationsPerRun = %d, want 1", *merged.OperationsPerRun)
		}
	})

	t.Run("local false overrides global true", func(t *testing.T) {
		global := &Config{RemoveStaleWhenUpdated: boolPtr(true)}
		local := &Config{RemoveStaleWhenUpdated: boolPtr(false)}

		merged := mergeConfig(global, local)
		if *merged.RemoveStaleWhenUpdated {
			t.Error("expected merged RemoveStaleWhenUpdated to be false")
		}
	})
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	in := `
repos:
  - octocat/hello-world
days_before_stale: 45
days_before_issue_close: 10
exempt_pr_labels:
  - work-in-progress
any_of_labels:
  - triaged
stale_pr_label: abandoned
close_issue_reason: completed
remove_stale_when_updated: false
operations_per_run: 15
hook_command: ./notify.sh
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(in), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Repos) != 1 || cfg.Repos[0] != "octocat/hello-world" {
		t.Errorf("Repos = %v", cfg.Repos)
	}
	if cfg.DaysBeforeStale == nil || *cfg.DaysBeforeStale != 45 {
		t.Errorf("DaysBeforeStale = %v, want 45", cfg.DaysBeforeStale)
	}
	if cfg.DaysBeforeIssueClose == nil || *cfg.DaysBeforeIssueClose != 10 {
		t.Errorf("DaysBeforeIssueClose = %v, want 10", cfg.DaysBeforeIssueClose)
	}
	if cfg.DaysBeforeClose != nil {
		t.Errorf("DaysBeforeClose should be unset, got %v", *cfg.DaysBeforeClose)
	}
	if cfg.StalePRLabel != "abandoned" {
		t.Errorf("StalePRLabel = %q", cfg.StalePRLabel)
	}
	if cfg.CloseIssueReason != "completed" {
		t.Errorf("CloseIssueReason = %q", cfg.CloseIssueReason)
	}
	if cfg.RemoveStaleWhenUpdated == nil || *cfg.RemoveStaleWhenUpdated {
		t.Errorf("RemoveStaleWhenUpdated = %v, want false", cfg.RemoveStaleWhenUpdated)
	}
	if cfg.OperationsPerRun == nil || *cfg.OperationsPerRun != 15 {
		t.Errorf("OperationsPerRun = %v, want 15", cfg.OperationsPerRun)
	}
	if cfg.HookCommand != "./notify.sh" {
		t.Errorf("HookCommand = %q", cfg.HookCommand)
	}
}

func TestDefaultConfigToYAML(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"days_before_stale: 60",
		"days_before_close: 7",
		"stale_issue_label: stale",
		"close_issue_reason: not_planned",
		"remove_stale_when_updated: true",
		"operations_per_run: 30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected YAML to contain %q\ngot:\n%s", want, out)
		}
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := SaveTo(path, MinimalConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.OperationsPerRun == nil || *cfg.OperationsPerRun != 30 {
		t.Errorf("OperationsPerRun = %v, want 30", cfg.OperationsPerRun)
	}
}

func TestMinimalConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(MinimalConfig()), &cfg); err != nil {
		t.Fatalf("minimal config template does not parse: %v", err)
	}
	if cfg.DaysBeforeStale == nil || *cfg.DaysBeforeStale != 60 {
		t.Errorf("DaysBeforeStale = %v, want 60", cfg.DaysBeforeStale)
	}
}
