package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/stalesweep/config"
	"github.com/spiffcs/stalesweep/internal/ghclient"
	"github.com/spiffcs/stalesweep/internal/hook"
	"github.com/spiffcs/stalesweep/internal/log"
	"github.com/spiffcs/stalesweep/internal/model"
	"github.com/spiffcs/stalesweep/internal/output"
	"github.com/spiffcs/stalesweep/internal/stats"
	"github.com/spiffcs/stalesweep/internal/sweep"
)

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep the configured repositories (same as root stalesweep)",
		Long: `Fetches the open issues and pull requests of the configured
repositories, evaluates the stale lifecycle policy, and applies the
resulting label, comment, and close operations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, opts)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags adds the run-specific flags to a command.
func addRunFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().StringSliceVarP(&opts.Repos, "repo", "r", nil, "Repository to sweep (owner/name, repeatable; overrides config)")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Compute and print operations without applying them")
	cmd.Flags().IntVar(&opts.MaxOperations, "max-operations", 0, "Cap mutations for this run (overrides operations_per_run)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runSweep(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repos, err := resolveRepos(opts, cfg)
	if err != nil {
		return err
	}

	policy := cfg.ResolvePolicy()
	if opts.MaxOperations > 0 {
		policy.OperationsPerRun = opts.MaxOperations
	}

	token := cfg.GetGitHubToken()
	if token == "" {
		return fmt.Errorf("GitHub token not configured. Set the GITHUB_TOKEN environment variable")
	}

	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return err
	}

	if log.IsDebug() {
		if login, err := client.AuthenticatedUser(ctx); err == nil {
			log.Debug("authenticated", "user", login)
		}
	}

	var postRun hook.Hook = hook.Noop{}
	if cfg.HookCommand != "" {
		postRun = hook.NewExec(cfg.HookCommand)
	}

	runner := sweep.NewRunner(client, client, policy, repos,
		sweep.WithDryRun(opts.DryRun),
		sweep.WithHook(postRun))

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	recordRun(report)

	if status := ghclient.GetRateLimitStatus(); status.Exhausted {
		log.Warn("GitHub rate limit exhausted",
			"limit", status.Limit, "resets_at", status.ResetAt.Format(time.RFC3339))
	} else if status.Limit > 0 && status.Remaining <= ghclient.RateLimitLowWatermark {
		log.Warn("GitHub rate limit running low",
			"remaining", status.Remaining, "limit", status.Limit)
	}

	format := output.Format(opts.Format)
	if format == "" {
		format = output.Format(cfg.DefaultFormat)
	}
	return output.NewFormatter(format).Format(report, os.Stdout)
}

// resolveRepos picks the repository set: flags win over config.
func resolveRepos(opts *Options, cfg *config.Config) ([]model.Repository, error) {
	names := opts.Repos
	if len(names) == 0 {
		names = cfg.Repos
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no repositories configured. Use --repo or set repos in the config file")
	}

	repos := make([]model.Repository, 0, len(names))
	for _, name := range names {
		repo, err := ghclient.ParseRepo(name)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// recordRun appends the run to the local history, best effort.
func recordRun(report *sweep.Report) {
	store, err := stats.NewStore()
	if err != nil {
		log.Warn("could not open run history", "error", err)
		return
	}
	if err := store.Append(stats.FromReport(report)); err != nil {
		log.Warn("could not record run history", "error", err)
	}
}
