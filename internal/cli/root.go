package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/treediff/internal/config"
	"github.com/AndreyAkinshin/treediff/internal/errors"
	"github.com/AndreyAkinshin/treediff/internal/logging"
	"github.com/AndreyAkinshin/treediff/internal/observability"
	"github.com/AndreyAkinshin/treediff/internal/output"
	"github.com/AndreyAkinshin/treediff/internal/project"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Color      string
	Quiet      bool
	Verbose    bool

	AbsEpsilon float64
	RelEpsilon float64
	Lenient    bool
	Unordered  bool
	IgnoreKeys []string
	NaNEqual   bool
	MaxDepth   int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// env is the per-invocation state shared by the subcommands.
type env struct {
	root    string // relative fixture paths resolve against it
	cfg     *config.Config
	policy  treediff.Policy
	format  string
	verbose bool
	out     *output.Writer
	logger  *slog.Logger
	tracing *observability.TracerProvider
}

// NewRootCommand creates the root command for the treediff CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	e := &env{}

	cmd := &cobra.Command{
		Use:   "treediff",
		Short: "Tolerant structural comparison of data trees",
		Long: `Compare an expected data tree against an actual one under a tolerance
policy: numbers within epsilon, "TRUE" equal to true, numeric text equal to
numbers, and optionally unordered arrays and ignored extra keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd, opts)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.AsConfig(err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default: .treediff/config.* in the project root)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.Color, "color", "auto", "colour mode (auto|always|never)")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "only print failures")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "print matches and debug logs")

	pf.Float64Var(&opts.AbsEpsilon, "abs-epsilon", treediff.DefaultAbsoluteEpsilon, "absolute numeric tolerance")
	pf.Float64Var(&opts.RelEpsilon, "rel-epsilon", treediff.DefaultRelativeEpsilon, "relative numeric tolerance")
	pf.BoolVar(&opts.Lenient, "lenient", false, "ignore keys present only in the actual tree")
	pf.BoolVar(&opts.Unordered, "unordered", false, "compare arrays as multisets")
	pf.StringSliceVar(&opts.IgnoreKeys, "ignore-key", nil, "key to skip at every level (repeatable)")
	pf.BoolVar(&opts.NaNEqual, "nan-equal", false, "treat NaN as equal to NaN")
	pf.IntVar(&opts.MaxDepth, "max-depth", treediff.DefaultMaxDepth, "maximum nesting depth")

	cmd.AddCommand(newCompareCommand(e))
	cmd.AddCommand(newRunCommand(e))
	cmd.AddCommand(newSQLCommand(e))
	cmd.AddCommand(newConfigCommand(e))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// setup loads configuration, applies flag overrides and starts logging
// and tracing for the command about to run.
func (e *env) setup(cmd *cobra.Command, opts *RootOptions) error {
	cfg, root, warnings, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	e.cfg, e.root = cfg, root
	flags := cmd.Flags()

	e.format = cfg.Output.Format
	if flags.Changed("format") {
		e.format = opts.Format
	}
	if !slices.Contains(ValidFormats, e.format) {
		return errors.Configf("invalid format %q: must be one of %v", e.format, ValidFormats)
	}

	colorMode := cfg.Output.Color
	if flags.Changed("color") {
		colorMode = opts.Color
	}
	if colorMode == "auto" && cmd.OutOrStdout() != os.Stdout {
		colorMode = "never"
	}
	e.out = output.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	if err := e.out.SetColor(colorMode); err != nil {
		return errors.AsConfig(err)
	}
	e.out.SetQuiet(opts.Quiet)
	e.verbose = opts.Verbose

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	if cmd.ErrOrStderr() == os.Stderr {
		e.logger, err = logging.Setup(level, cfg.Log.Format)
	} else {
		e.logger, err = logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	}
	if err != nil {
		return errors.AsConfig(err)
	}

	for _, w := range warnings {
		e.out.Warning("%s", w)
	}

	e.policy, err = policyFromFlags(cmd, cfg.Policy, opts)
	if err != nil {
		return err
	}

	e.tracing, err = observability.InitTracing(cmd.Context(), &observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize tracing")
	}
	return nil
}

// runE wraps a command body so pending spans are flushed whether or not
// it fails.
func (e *env) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if e.tracing != nil {
			if serr := e.tracing.Shutdown(context.WithoutCancel(cmd.Context())); serr != nil {
				e.logger.Warn("failed to flush traces", "error", serr)
			}
		}
		return err
	}
}

// loadConfig resolves the configuration and the directory relative paths
// are resolved against. An explicit path wins; otherwise the enclosing
// project is used, and outside a project defaults plus environment apply.
func loadConfig(path string) (*config.Config, string, []string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", nil, errors.AsConfig(err)
		}
		cfg, warnings, err := config.Load(abs)
		if err != nil {
			return nil, "", nil, errors.AsConfig(err)
		}
		root := filepath.Dir(abs)
		if filepath.Base(root) == project.ConfigDirName {
			root = filepath.Dir(root)
		}
		return cfg, root, warnings, nil
	}

	proj, err := project.LoadProject()
	if err == nil {
		return proj.Config, proj.Root, proj.Warnings, nil
	}
	if !errors.Is(err, project.ErrNoProjectRoot) {
		return nil, "", nil, errors.AsConfig(err)
	}

	cfg, warnings, err := config.Load("")
	if err != nil {
		return nil, "", nil, errors.AsConfig(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", nil, errors.Wrap(err, "failed to get working directory")
	}
	return cfg, wd, warnings, nil
}

// policyFromFlags applies explicitly set policy flags on top of the
// configured policy.
func policyFromFlags(cmd *cobra.Command, base config.PolicyConfig, opts *RootOptions) (treediff.Policy, error) {
	flags := cmd.Flags()
	p := base
	p.IgnoreKeys = slices.Clone(base.IgnoreKeys)

	if flags.Changed("abs-epsilon") {
		p.AbsoluteEpsilon = opts.AbsEpsilon
	}
	if flags.Changed("rel-epsilon") {
		p.RelativeEpsilon = opts.RelEpsilon
	}
	if opts.Lenient {
		p.ExtraKeys = string(treediff.ExtraKeysLenient)
	}
	if opts.Unordered {
		p.ArrayOrder = string(treediff.ArrayOrderUnordered)
	}
	if opts.NaNEqual {
		p.NaNEqualsNaN = true
	}
	if flags.Changed("max-depth") {
		p.MaxDepth = opts.MaxDepth
	}
	p.IgnoreKeys = append(p.IgnoreKeys, opts.IgnoreKeys...)

	policy, err := p.Policy()
	if err != nil {
		return treediff.Policy{}, errors.AsConfig(err)
	}
	return policy, nil
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.AsConfig(err)
		}
		return nil
	}
}
