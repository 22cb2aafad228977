package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"karm/config"
	"karm/icons"
	"karm/misc"
	"karm/state"
)

// prepare loads configuration for its logging section only.
func prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := state.EnvFromContext(ctx)
	env.Verbose = cmd.Bool("verbose")
	if env.Cfg, err = config.LoadConfiguration(cmd.String("config")); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(nil, env.Verbose); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.Log = env.Log.Named("iconsync")
	return ctx, nil
}

func finish(ctx context.Context, _ *cli.Command) error {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		_ = env.Log.Sync()
	}
	return nil
}

var errWasLogged bool

func logError(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Icon map was not synced", zap.Error(err))
		errWasLogged = true
	}
}

func sync(ctx context.Context, cmd *cli.Command) error {
	log := state.EnvFromContext(ctx).Log

	src := cmd.Args().Get(0)
	if src == "" {
		return errors.New("icon constants SOURCE is required")
	}
	out := cmd.String("out")
	if cmd.Args().Len() > 1 {
		out = cmd.Args().Get(1)
	}
	log.Debug("Scraping icon constants", zap.String("source", src))

	n, err := icons.Sync(src, out)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("No icon constants found, map is empty", zap.String("source", src))
	}
	log.Info("Icon map synced", zap.Int("icons", n), zap.String("destination", out))
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            "iconsync",
		Usage:           "extracts icon font code points from constants source into JSON icon map",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		ArgsUsage:       "SOURCE [DESTINATION]",
		Before:          prepare,
		After:           finish,
		ExitErrHandler:  logError,
		Action:          sync,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load logging configuration from `FILE` (YAML or JSON)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug messages to console"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "icon-map.json", Usage: "write icon map to `FILE`"},
		},
	}
}

func main() {
	ctx := state.ContextWithEnv(context.Background())
	if err := newApp().Run(ctx, os.Args); err != nil {
		if !errWasLogged {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
