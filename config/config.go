// Package config loads and resolves the stalesweep configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration as written in YAML.
// Optional numeric and boolean fields are pointers so an absent option can
// be distinguished from an explicit zero.
type Config struct {
	DefaultFormat string   `yaml:"default_format,omitempty"`
	Repos         []string `yaml:"repos,omitempty"`
	HookCommand   string   `yaml:"hook_command,omitempty"`

	// Generic thresholds apply to both kinds unless an issue-specific
	// option overrides them.
	DaysBeforeStale      *int `yaml:"days_before_stale,omitempty"`
	DaysBeforeClose      *int `yaml:"days_before_close,omitempty"`
	DaysBeforeIssueStale *int `yaml:"days_before_issue_stale,omitempty"`
	DaysBeforeIssueClose *int `yaml:"days_before_issue_close,omitempty"`

	ExemptIssueLabels []string `yaml:"exempt_issue_labels,omitempty"`
	ExemptPRLabels    []string `yaml:"exempt_pr_labels,omitempty"`
	AnyOfLabels       []string `yaml:"any_of_labels,omitempty"`

	StaleIssueLabel   string `yaml:"stale_issue_label,omitempty"`
	StalePRLabel      string `yaml:"stale_pr_label,omitempty"`
	StaleIssueMessage string `yaml:"stale_issue_message,omitempty"`
	StalePRMessage    string `yaml:"stale_pr_message,omitempty"`
	CloseIssueMessage string `yaml:"close_issue_message,omitempty"`
	ClosePRMessage    string `yaml:"close_pr_message,omitempty"`
	CloseIssueReason  string `yaml:"close_issue_reason,omitempty"`

	RemoveStaleWhenUpdated *bool `yaml:"remove_stale_when_updated,omitempty"`
	OperationsPerRun       *int  `yaml:"operations_per_run,omitempty"`
}

// KindPolicy is the resolved policy for one entity kind.
type KindPolicy struct {
	DaysBeforeStale int
	DaysBeforeClose int
	ExemptLabels    []string
	StaleLabel      string
	StaleMessage    string
	CloseMessage    string
	CloseReason     string
}

// Policy is the flattened configuration consumed by the policy engine.
type Policy struct {
	Issues                 KindPolicy
	PullRequests           KindPolicy
	AnyOfLabels            []string
	RemoveStaleWhenUpdated bool
	OperationsPerRun       int
}

// Default values, matching common stale-bot conventions.
const (
	DefaultDaysBeforeStale  = 60
	DefaultDaysBeforeClose  = 7
	DefaultStaleLabel       = "stale"
	DefaultCloseIssueReason = "not_planned"
	DefaultOperationsPerRun = 30
)

// DefaultStaleMessage is posted when an entity is marked stale.
const DefaultStaleMessage = "This has been automatically marked as stale " +
	"because it has not had recent activity. It will be closed if no further " +
	"activity occurs."

// DefaultPolicy returns the policy with every option at its default.
func DefaultPolicy() Policy {
	return Policy{
		Issues: KindPolicy{
			DaysBeforeStale: DefaultDaysBeforeStale,
			DaysBeforeClose: DefaultDaysBeforeClose,
			StaleLabel:      DefaultStaleLabel,
			StaleMessage:    DefaultStaleMessage,
			CloseReason:     DefaultCloseIssueReason,
		},
		PullRequests: KindPolicy{
			DaysBeforeStale: DefaultDaysBeforeStale,
			DaysBeforeClose: DefaultDaysBeforeClose,
			StaleLabel:      DefaultStaleLabel,
			StaleMessage:    DefaultStaleMessage,
		},
		RemoveStaleWhenUpdated: true,
		OperationsPerRun:       DefaultOperationsPerRun,
	}
}

// ResolvePolicy flattens the raw config into per-kind policies. Generic
// thresholds apply to both kinds; issue-specific options override the
// generic value for issues only. Issue and PR thresholds are otherwise
// fully independent.
func (c *Config) ResolvePolicy() Policy {
	p := DefaultPolicy()

	if c.DaysBeforeStale != nil {
		p.Issues.DaysBeforeStale = *c.DaysBeforeStale
		p.PullRequests.DaysBeforeStale = *c.DaysBeforeStale
	}
	if c.DaysBeforeClose != nil {
		p.Issues.DaysBeforeClose = *c.DaysBeforeClose
		p.PullRequests.DaysBeforeClose = *c.DaysBeforeClose
	}
	if c.DaysBeforeIssueStale != nil {
		p.Issues.DaysBeforeStale = *c.DaysBeforeIssueStale
	}
	if c.DaysBeforeIssueClose != nil {
		p.Issues.DaysBeforeClose = *c.DaysBeforeIssueClose
	}

	p.Issues.ExemptLabels = c.ExemptIssueLabels
	p.PullRequests.ExemptLabels = c.ExemptPRLabels
	p.AnyOfLabels = c.AnyOfLabels

	if c.StaleIssueLabel != "" {
		p.Issues.StaleLabel = c.StaleIssueLabel
	}
	if c.StalePRLabel != "" {
		p.PullRequests.StaleLabel = c.StalePRLabel
	}
	if c.StaleIssueMessage != "" {
		p.Issues.StaleMessage = c.StaleIssueMessage
	}
	if c.StalePRMessage != "" {
		p.PullRequests.StaleMessage = c.StalePRMessage
	}
	p.Issues.CloseMessage = c.CloseIssueMessage
	p.PullRequests.CloseMessage = c.ClosePRMessage
	if c.CloseIssueReason != "" {
		p.Issues.CloseReason = c.CloseIssueReason
	}

	if c.RemoveStaleWhenUpdated != nil {
		p.RemoveStaleWhenUpdated = *c.RemoveStaleWhenUpdated
	}
	if c.OperationsPerRun != nil {
		p.OperationsPerRun = *c.OperationsPerRun
	}

	return p
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".stalesweep"
	}
	return filepath.Join(configDir, "stalesweep")
}

// ConfigPath returns the path to the global config file.
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory.
func LocalConfigPath() string {
	return ".stalesweep.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .stalesweep.yaml on top (local values take precedence).
func Load() (*Config, error) {
	cfg := &Config{
		DefaultFormat: "table",
	}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}
	if len(local.Repos) > 0 {
		result.Repos = local.Repos
	}
	if local.HookCommand != "" {
		result.HookCommand = local.HookCommand
	}

	if local.DaysBeforeStale != nil {
		result.DaysBeforeStale = local.DaysBeforeStale
	}
	if local.DaysBeforeClose != nil {
		result.DaysBeforeClose = local.DaysBeforeClose
	}
	if local.DaysBeforeIssueStale != nil {
		result.DaysBeforeIssueStale = local.DaysBeforeIssueStale
	}
	if local.DaysBeforeIssueClose != nil {
		result.DaysBeforeIssueClose = local.DaysBeforeIssueClose
	}

	if len(local.ExemptIssueLabels) > 0 {
		result.ExemptIssueLabels = local.ExemptIssueLabels
	}
	if len(local.ExemptPRLabels) > 0 {
		result.ExemptPRLabels = local.ExemptPRLabels
	}
	if len(local.AnyOfLabels) > 0 {
		result.AnyOfLabels = local.AnyOfLabels
	}

	if local.StaleIssueLabel != "" {
		result.StaleIssueLabel = local.StaleIssueLabel
	}
	if local.StalePRLabel != "" {
		result.StalePRLabel = local.StalePRLabel
	}
	if local.StaleIssueMessage != "" {
		result.StaleIssueMessage = local.StaleIssueMessage
	}
	if local.StalePRMessage != "" {
		result.StalePRMessage = local.StalePRMessage
	}
	if local.CloseIssueMessage != "" {
		result.CloseIssueMessage = local.CloseIssueMessage
	}
	if local.ClosePRMessage != "" {
		result.ClosePRMessage = local.ClosePRMessage
	}
	if local.CloseIssueReason != "" {
		result.CloseIssueReason = local.CloseIssueReason
	}

	if local.RemoveStaleWhenUpdated != nil {
		result.RemoveStaleWhenUpdated = local.RemoveStaleWhenUpdated
	}
	if local.OperationsPerRun != nil {
		result.OperationsPerRun = local.OperationsPerRun
	}

	return &result
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Following 12-factor app best practices, tokens are only read
// from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	daysStale := DefaultDaysBeforeStale
	daysClose := DefaultDaysBeforeClose
	removeOnUpdate := true
	opsPerRun := DefaultOperationsPerRun

	return &Config{
		DefaultFormat:          "table",
		Repos:                  []string{},
		DaysBeforeStale:        &daysStale,
		DaysBeforeClose:        &daysClose,
		ExemptIssueLabels:      []string{},
		ExemptPRLabels:         []string{},
		AnyOfLabels:            []string{},
		StaleIssueLabel:        DefaultStaleLabel,
		StalePRLabel:           DefaultStaleLabel,
		StaleIssueMessage:      DefaultStaleMessage,
		StalePRMessage:         DefaultStaleMessage,
		CloseIssueReason:       DefaultCloseIssueReason,
		RemoveStaleWhenUpdated: &removeOnUpdate,
		OperationsPerRun:       &opsPerRun,
	}
}

// ToYAML returns the config as a YAML string.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths.
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs.
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments.
func MinimalConfig() string {
	return `# stalesweep configuration file
# See: stalesweep config defaults  (for all available options)

# Repositories to sweep (owner/name)
repos:
  - owner/repo

# Days of inactivity before an entity is marked stale
days_before_stale: 60

# Days after marking before a stale entity is closed
days_before_close: 7

# Labels that exempt an issue or PR from the policy (optional)
# exempt_issue_labels:
#   - pinned
#   - security
# exempt_pr_labels:
#   - work-in-progress

# Cap on mutations issued per run (backpressure against rate limits)
operations_per_run: 30
`
}

// SaveTo writes content to a specific path, creating directories as needed.
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
