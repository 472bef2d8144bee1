package cmd

import (
	"testing"

	"github.com/spiffcs/stalesweep/config"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "stalesweep" {
		t.Errorf("expected Use to be 'stalesweep', got %q", cmd.Use)
	}
}

func TestNewCmdRun(t *testing.T) {
	opts := &Options{}
	cmd := NewCmdRun(opts)
	if cmd == nil {
		t.Fatal("NewCmdRun() returned nil")
	}
	if cmd.Use != "run" {
		t.Errorf("expected Use to be 'run', got %q", cmd.Use)
	}
}

func TestNewCmdConfig(t *testing.T) {
	cmd := NewCmdConfig()
	if cmd == nil {
		t.Fatal("NewCmdConfig() returned nil")
	}
	if cmd.Use != "config" {
		t.Errorf("expected Use to be 'config', got %q", cmd.Use)
	}
}

func TestNewCmdHistory(t *testing.T) {
	cmd := NewCmdHistory()
	if cmd == nil {
		t.Fatal("NewCmdHistory() returned nil")
	}
	if cmd.Use != "history" {
		t.Errorf("expected Use to be 'history', got %q", cmd.Use)
	}
}

func TestNewCmdVersion(t *testing.T) {
	cmd := NewCmdVersion()
	if cmd == nil {
		t.Fatal("NewCmdVersion() returned nil")
	}
	if cmd.Use != "version" {
		t.Errorf("expected Use to be 'version', got %q", cmd.Use)
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")
	// Just verify it doesn't panic - version info is in package vars
}

func TestOptions(t *testing.T) {
	opts := NewOptions(
		WithFormat("json"),
		WithRepos([]string{"octocat/hello-world"}),
		WithDryRun(true),
		WithMaxOperations(5),
		WithVerbosity(2),
	)
	if opts.Format != "json" {
		t.Errorf("expected Format to be 'json', got %q", opts.Format)
	}
	if len(opts.Repos) != 1 || opts.Repos[0] != "octocat/hello-world" {
		t.Errorf("unexpected Repos: %v", opts.Repos)
	}
	if !opts.DryRun {
		t.Error("expected DryRun to be true")
	}
	if opts.MaxOperations != 5 {
		t.Errorf("expected MaxOperations to be 5, got %d", opts.MaxOperations)
	}
	if opts.Verbosity != 2 {
		t.Errorf("expected Verbosity to be 2, got %d", opts.Verbosity)
	}
}

func TestResolveRepos(t *testing.T) {
	tests := []struct {
		name      string
		flagRepos []string
		cfgRepos  []string
		want      int
		wantErr   bool
	}{
		{
			name:      "flags override config",
			flagRepos: []string{"a/b"},
			cfgRepos:  []string{"c/d", "e/f"},
			want:      1,
		},
		{
			name:     "config used when no flags",
			cfgRepos: []string{"c/d", "e/f"},
			want:     2,
		},
		{
			name:    "none configured",
			wantErr: true,
		},
		{
			name:      "invalid repo name",
			flagRepos: []string{"not-a-repo"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{Repos: tt.flagRepos}
			cfg := &config.Config{Repos: tt.cfgRepos}

			repos, err := resolveRepos(opts, cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(repos) != tt.want {
				t.Errorf("expected %d repos, got %d", tt.want, len(repos))
			}
		})
	}
}
