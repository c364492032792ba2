// Package runtime owns process-level lifecycle for the controller: the
// global context, interrupt handling and final error reporting.
package runtime

import (
	"context"
	"os"
	"os/signal"

	"github.com/coconutbird/uwpdumper/internal/logs"
)

type Runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHostRuntime creates the controller runtime. Ctrl-C cancels the global
// context, which closes the state database and lets a running session loop
// bail out.
func NewHostRuntime() *Runtime {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return &Runtime{ctx: ctx, cancel: cancel}
}

func (rt *Runtime) Ctx() context.Context {
	return rt.ctx
}

func (rt *Runtime) CancelCtx() {
	rt.cancel()
}

// Finalize reports the command's outcome and sets the exit code. Deferred
// from main.
func (rt *Runtime) Finalize(appName, hint string, execErr *error) {
	rt.cancel()
	if execErr == nil || *execErr == nil {
		return
	}
	logs.Errorf("%s: %v", appName, *execErr)
	if hint != "" {
		logs.Infof("%s", hint)
	}
	os.Exit(1)
}
