// Package cli is the studyd command line: cobra commands over the entity
// store, with text or JSON output.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/studyd/internal/config"
	"github.com/sandeepkv93/studyd/internal/integrity"
	"github.com/sandeepkv93/studyd/internal/logging"
	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Backend    string
	DataPath   string
	Format     string // "json" | "text"
	Verbose    bool

	// test hooks
	backend storage.Backend
	ids     store.IDGenerator
	now     func() time.Time
	logger  *slog.Logger
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studyd",
		Short: "studyd - a terminal study planner",
		Long: `Plan coursework from the terminal: subjects, dated tasks and
markdown notes, with a dashboard of what is due and what was touched last.

Run without a subcommand to open the interactive UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeInvalid,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./studyd.yaml or $XDG_CONFIG_HOME/studyd/studyd.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|json|memory)")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", "", "data file path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSubjectCommand(opts))
	cmd.AddCommand(NewTaskCommand(opts))
	cmd.AddCommand(NewNoteCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewDoctorCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTUICommand(opts))

	return cmd
}

// Execute runs the command line and reports failures in the selected
// format. It returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	return execute(opts, args, stdout, stderr)
}

func execute(opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	exit, code := classify(err)
	var details any
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		details = exitErr.Details
	} else if !isDomainError(err) {
		// flag and argument errors come from cobra itself
		exit = ExitCommandError
		code = ErrCodeInvalid
	}
	formatter := opts.formatter(stdout, stderr)
	_ = formatter.Error(code, err.Error(), details)
	return exit
}

// isDomainError reports whether err came out of a command body rather than
// cobra's argument handling.
func isDomainError(err error) bool {
	var domain *commandError
	return errors.As(err, &domain)
}

// commandError marks errors returned from a RunE body.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func (o *RootOptions) formatter(stdout, stderr io.Writer) *OutputFormatter {
	format := o.Format
	if !isValidFormat(format) {
		format = "text"
	}
	return &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr, Verbose: o.Verbose}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// runtime is everything a command needs, opened per invocation.
type runtime struct {
	cfg       config.RuntimeConfig
	logger    *slog.Logger
	logCloser io.Closer
	backend   storage.Backend
	owned     bool
	store     *store.Store
	cascade   *integrity.Coordinator
	out       *OutputFormatter
	now       func() time.Time
}

func (o *RootOptions) open(cmd *cobra.Command) (*runtime, error) {
	v := config.New(o.ConfigFile)
	flags := cmd.Root().PersistentFlags()
	if err := bindFlag(v, config.KeyBackend, flags.Lookup("backend")); err != nil {
		return nil, err
	}
	if err := bindFlag(v, config.KeyDataPath, flags.Lookup("data")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "load config", err)
	}

	rt := &runtime{
		cfg: cfg,
		out: o.formatter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		now: time.Now,
	}
	if o.now != nil {
		rt.now = o.now
	}

	rt.logger = o.logger
	if rt.logger == nil {
		level := cfg.LogLevel
		if o.Verbose {
			level = "debug"
		}
		logger, closer, err := logging.Setup(logging.Options{
			Level:   level,
			File:    cfg.LogFile,
			Dir:     config.CacheDir(),
			Verbose: o.Verbose,
			Stderr:  cmd.ErrOrStderr(),
		})
		if err != nil {
			return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "set up logging", err)
		}
		rt.logger = logger
		rt.logCloser = closer
	}

	rt.backend = o.backend
	if rt.backend == nil {
		backend, err := storage.Open(cfg.Backend, cfg.DataPath)
		if err != nil {
			rt.Close()
			return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "open storage", err)
		}
		rt.backend = backend
		rt.owned = true
	}
	rt.out.VerboseLog("backend: %s (%s)", cfg.Backend, cfg.DataPath)

	storeOpts := []store.Option{
		store.WithLogger(rt.logger),
		store.WithClock(rt.now),
		store.WithStrictReferences(cfg.StrictReferences),
	}
	if o.ids != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.ids))
	}
	rt.store = store.New(rt.backend, storeOpts...)
	rt.cascade = integrity.NewCoordinator(rt.store, rt.logger)
	return rt, nil
}

func (r *runtime) Close() {
	if r.owned && r.backend != nil {
		if err := r.backend.Close(); err != nil && r.logger != nil {
			r.logger.Warn("close backend", slog.Any("err", err))
		}
	}
	if r.logCloser != nil {
		_ = r.logCloser.Close()
	}
}

// bindFlag lets an explicitly set flag override file and env settings.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind --%s: %w", flag.Name, err)
	}
	return nil
}

// withRuntime opens the runtime, runs fn and tags its error as a command error.
func withRuntime(opts *RootOptions, cmd *cobra.Command, fn func(rt *runtime) error) error {
	rt, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := fn(rt); err != nil {
		return &commandError{err: err}
	}
	return nil
}
