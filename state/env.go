// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"karm/config"
)

type envKey struct{}

// Stage is a timed step of a generation run.
type Stage struct {
	Name    string
	Elapsed time.Duration
}

// LocalEnv keeps everything program needs in a single place. It is created
// once per process and filled by the CLI hooks before generation starts.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// command line switches which are not part of configuration
	DryRun  bool
	Verbose bool

	start   time.Time
	stages  []Stage
	restore func()
}

// ContextWithEnv returns context carrying new empty environment.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

// EnvFromContext panics when ctx was not prepared by ContextWithEnv.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("program environment is missing from context")
	}
	return env
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// BeginStage starts timing named step, returned function ends it.
//
//	defer env.BeginStage("fetch")()
func (e *LocalEnv) BeginStage(name string) func() {
	began := time.Now()
	return func() {
		e.stages = append(e.stages, Stage{Name: name, Elapsed: time.Since(began)})
	}
}

// Stages returns finished steps in completion order.
func (e *LocalEnv) Stages() []Stage {
	return e.stages
}

// RedirectStdLog sends output of standard library logger (used by some
// dependencies) to program log.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log != nil {
		e.restore = zap.RedirectStdLog(e.Log.Named("stdlog"))
	}
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restore != nil {
		e.restore()
		e.restore = nil
	}
}
