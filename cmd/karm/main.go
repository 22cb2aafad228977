package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"karm/config"
	"karm/generate"
	"karm/misc"
	"karm/state"
)

// initializeAppContext prepares application context before generation but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := state.EnvFromContext(ctx)
	env.DryRun, env.Verbose = cmd.Bool("dry-run"), cmd.Bool("verbose")

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if err = env.Cfg.Apply(config.Overrides{
		Engine:       cmd.String("engine"),
		DPI:          cmd.Int("dpi"),
		Categories:   cmd.StringSlice("include-categories"),
		UpgradeTypes: cmd.StringSlice("include-upgrade-types"),
		OutputHTML:   cmd.String("output-html"),
		OutputPDF:    cmd.String("output-pdf"),
		CompileLog:   cmd.String("compile-log"),
		Web:          cmd.Bool("web"),
	}); err != nil {
		return ctx, fmt.Errorf("bad command line: %w", err)
	}

	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// effective configuration, token is never written out
		if data, err := config.Dump(env.Cfg); err == nil {
			name := "config/effective.yaml"
			if len(configFile) > 0 {
				name = fmt.Sprintf("config/%s", filepath.Base(configFile))
			}
			env.Rpt.StoreData(name, data)
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt, env.Verbose); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		for _, st := range env.Stages() {
			env.Log.Debug("Stage timing", zap.String("stage", st.Name), zap.Duration("elapsed", st.Elapsed))
		}
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	if env.Cfg != nil {
		err = multierr.Append(err, removeEmptyPanicLog(env.Cfg.Logging.FileLogger.Destination))
	}
	return
}

// removeEmptyPanicLog stops crash output capture and deletes panic log if
// nothing crashed.
func removeEmptyPanicLog(logDest string) error {
	if logDest == "" {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	fname := filepath.Join(filepath.Dir(logDest), misc.GetAppName()+"-panic.log")
	if fi, err := os.Stat(fname); err != nil || fi.Size() > 0 {
		return nil
	}
	if err := os.Remove(fname); err != nil {
		return fmt.Errorf("unable to remove empty panic log '%s': %w", fname, err)
	}
	return nil
}

// Regular errors are returned from action, cli.Exit() is not used.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from generation
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

// errorChain prints every wrapped layer of err, aggregated errors are
// expanded.
func errorChain(err error) string {
	var b strings.Builder
	for _, e := range multierr.Errors(err) {
		for depth := 0; e != nil; depth++ {
			fmt.Fprintf(&b, "%s%+v\n", strings.Repeat("  ", depth), e)
			e = errors.Unwrap(e)
		}
	}
	return b.String()
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		state.EnvFromContext(ctx).Log.Warn("Unexpected arguments, ignoring", zap.Strings("args", cmd.Args().Slice()))
	}
	if cmd.Bool("print-config") {
		return outputConfiguration(ctx)
	}
	return generate.Run(ctx, cmd)
}

func main() {

	// allow graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiles card rulings into a printable book or a web page",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Action:          run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML or JSON)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
			&cli.BoolFlag{Name: "dry-run", Usage: "produce HTML and compile log only, do not render PDF"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every request and print complete error chain on failure"},
			&cli.StringFlag{Name: "engine", Usage: "PDF rendering `ENGINE` (supported: " + strings.Join(config.EngineNames(), ", ") + ")"},
			&cli.IntFlag{Name: "dpi", Usage: "PDF rendering resolution, clamped to [72, 600]"},
			&cli.StringSliceFlag{Name: "include-categories", Usage: "comma separated `LIST` of categories (" + strings.Join(config.KnownCategories, ", ") + ")"},
			&cli.StringSliceFlag{Name: "include-upgrade-types", Usage: "comma separated `LIST` of upgrade types, empty - all"},
			&cli.StringFlag{Name: "output-html", Usage: "HTML destination `FILE`"},
			&cli.StringFlag{Name: "output-pdf", Usage: "PDF destination `FILE`"},
			&cli.StringFlag{Name: "compile-log", Usage: "compile log destination `FILE`"},
			&cli.BoolFlag{Name: "web", Usage: "produce continuous web document regardless of output location"},
			&cli.BoolFlag{Name: "print-config", Usage: "output actual configuration (YAML) to STDOUT and exit"},
		},
	}

	var err error
	// NOTE: os.Exit below skips any other deferred calls
	defer func() {
		stop()
		if err != nil {
			// log may be absent (bad arguments) or closed already
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			if state.EnvFromContext(ctx).Verbose {
				fmt.Fprint(os.Stderr, errorChain(err))
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context) error {
	env := state.EnvFromContext(ctx)

	data, err := config.Dump(env.Cfg)
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	env.Log.Debug("Printing configuration", zap.String("state", "actual"))

	if _, err = os.Stdout.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
