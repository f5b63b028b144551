// Package cli wires the todo commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/store/sqlite"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// env is the per-invocation state shared by every command.
type env struct {
	stdout, stderr io.Writer

	cfg      *config.Config
	log      *log.Logger
	closeLog func() error

	store *sqlite.Store
	ctrl  *app.Controller
}

// Run executes args and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	if err == nil {
		return ExitOK
	}

	ui.Fail(stderr, err.Error())
	var u usageError
	if errors.As(err, &u) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "A tiny persisted todo list",
		Long: `todo keeps a list of items in a local SQLite database.

Run without arguments to open the interactive screen, or use the
subcommands to script it.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown subcommand: %s (see todo --help)", args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(e.stdout) {
				return runList(cmd.Context(), e, false)
			}
			return runScreen(cmd.Context(), e)
		},
	}
	config.BindFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.AddCommand(
		newUICmd(e),
		newAddCmd(e),
		newListCmd(e),
		newDoneCmd(e),
		newRemoveCmd(e),
		newSeedCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newConfigCmd(e),
	)
	return root
}

// interactive reports whether cmd takes over the terminal.
func (e *env) interactive(cmd *cobra.Command) bool {
	switch {
	case cmd.Name() == "ui":
		return true
	case !cmd.HasParent():
		return isTerminal(e.stdout)
	default:
		return false
	}
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if errors.Is(err, config.ErrInvalid) {
		return usageError{err: err}
	}
	if err != nil {
		return err
	}
	e.cfg = cfg
	ui.SetTheme(cfg.Theme)

	var fallback io.Writer = e.stderr
	if e.interactive(cmd) {
		fallback = io.Discard
	}
	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel, fallback)
	if err != nil {
		return err
	}
	e.log, e.closeLog = logger, closeLog
	e.log.Debug("config loaded", "source", cfg.Source, "database", cfg.Database)
	return nil
}

// open opens the store and loads the rows. With seed set an empty table
// is populated first, subject to the configuration.
func (e *env) open(ctx context.Context, seed bool) (*app.Controller, error) {
	if e.ctrl != nil {
		return e.ctrl, nil
	}
	s, err := sqlite.Open(ctx, e.cfg.Database)
	if err != nil {
		return nil, err
	}
	e.store = s
	e.ctrl = app.NewController(s, app.Options{Seed: seed && e.cfg.Seed, Logger: e.log})
	if err := e.ctrl.Start(ctx); err != nil {
		return nil, err
	}
	return e.ctrl, nil
}

func (e *env) close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.closeLog != nil {
		errs = append(errs, e.closeLog())
	}
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, isFile := w.(*os.File)
	return isFile && ui.IsTerminal(f)
}

func newUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive screen",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context(), e)
		},
	}
}

func runScreen(ctx context.Context, e *env) error {
	ctrl, err := e.open(ctx, true)
	if err != nil {
		return err
	}

	opt := tui.Options{Logger: e.log}
	if e.cfg.Watch && e.cfg.Database != ":memory:" {
		w, err := tui.NewWatcher(e.cfg.Database)
		if err != nil {
			e.log.Warn("not watching database", "err", err)
		} else {
			defer func() { _ = w.Close() }()
			opt.Watcher = w
		}
	}
	return tui.Run(ctx, ctrl, opt)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("usage: todo %s", cmd.Use)
	}
	return nil
}
