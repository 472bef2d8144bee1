package cmd

// Options holds the shared command-line options for the stalesweep CLI.
type Options struct {
	Format        string
	Repos         []string
	DryRun        bool
	MaxOperations int
	Verbosity     int
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithRepos sets the repositories to sweep, overriding the config file.
func WithRepos(repos []string) Option {
	return func(o *Options) {
		o.Repos = repos
	}
}

// WithDryRun computes operations without applying them.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithMaxOperations caps mutations issued in one run, overriding the config file.
func WithMaxOperations(n int) Option {
	return func(o *Options) {
		o.MaxOperations = n
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}
