package cmd

// Options holds the shared command-line options for the issuebot CLI.
type Options struct {
	ConfigPath  string
	Verbosity   int
	Format      string
	DryRun      bool
	Now         string // RFC3339 override of the evaluation time
	Limit       int    // Issues fetched per batch; 0 means batch_size
	ShowAll     bool   // Include untouched issues in the report
	TUI         *bool  // nil = auto-detect, true = force TUI, false = disable TUI
	MetricsFile string // Prometheus textfile written after the run
	NoHistory   bool   // Skip appending to the run history
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Format: "table",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfigPath sets an explicit config file.
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.ConfigPath = path
	}
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithDryRun evaluates issues without mutating them.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithNow overrides the evaluation time.
func WithNow(now string) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// WithLimit sets the number of issues fetched per batch.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithMetricsFile sets the Prometheus textfile path.
func WithMetricsFile(path string) Option {
	return func(o *Options) {
		o.MetricsFile = path
	}
}

// WithNoHistory disables the run history.
func WithNoHistory(skip bool) Option {
	return func(o *Options) {
		o.NoHistory = skip
	}
}
