// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"figuremark/config"
	"figuremark/figure"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// RunID tags every log line of a single program run, so appended log
	// files could be split back.
	RunID uuid.UUID

	// used by convert subcommand
	NoDirs    bool
	Overwrite bool
	Collate   bool
	Format    config.OutputFmt

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Converter returns figure converter set up with configured global
// attributes followed by document specific ones.
func (e *LocalEnv) Converter(docGlobals ...string) *figure.Converter {
	var globals []string
	if e.Cfg != nil {
		globals = append(globals, e.Cfg.Document.Globals)
	}
	globals = append(globals, docGlobals...)

	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	return figure.New(figure.WithLogger(log.Named("figure")), figure.WithGlobals(globals...))
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
