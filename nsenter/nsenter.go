// Package nsenter ties the launcher together: it optionally waits at the
// gate, joins the namespaces of the target, resolves the command inside
// them and runs it.
package nsenter

import (
	"context"
	"runtime"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/api/types"
	"github.com/YLonely/nsexec/launcher"
	"github.com/YLonely/nsexec/log"
	"github.com/YLonely/nsexec/namespace"
	"github.com/YLonely/nsexec/resolver"
	"github.com/YLonely/nsexec/signals"
	"github.com/pkg/errors"
)

type Gate interface {
	Wait(context.Context) error
}

type Joiner interface {
	JoinAll(pid int, ts []types.NamespaceType) error
}

type Resolver interface {
	Resolve(args []string) (*resolver.Command, error)
}

type Launcher interface {
	Launch(*resolver.Command) (int, error)
}

type Runner struct {
	Gate     Gate
	Joiner   Joiner
	Resolver Resolver
	Launcher Launcher
}

// NewRunner wires the default components. env must be captured before any
// namespace is joined.
func NewRunner(env resolver.Environment) *Runner {
	return &Runner{
		Gate:     signals.NewGate(),
		Joiner:   namespace.NewJoiner(),
		Resolver: resolver.New(env),
		Launcher: launcher.New(),
	}
}

// Run executes req and returns the exit code of the launcher. The calling
// goroutine is locked to its OS thread and never unlocked, the thread
// carries the joined namespaces and must not be reused.
func (r *Runner) Run(ctx context.Context, req nsexec.Request) (int, error) {
	logger := log.Logger(nsexec.MainComponent, "Run")
	if err := req.Validate(); err != nil {
		return nsexec.ExitFailure, err
	}
	log.WithInterface(logger, "request", req).Debug("run request")
	runtime.LockOSThread()

	if req.Pause {
		if err := r.Gate.Wait(ctx); err != nil {
			return nsexec.ExitFailure, errors.Wrap(err, "failed to wait at the gate")
		}
	}
	if err := r.Joiner.JoinAll(req.Target, req.Namespaces); err != nil {
		return nsexec.ExitFailure, err
	}
	cmd, err := r.Resolver.Resolve(req.Args)
	if err != nil {
		return nsexec.ExitCode(err), err
	}
	return r.Launcher.Launch(cmd)
}
