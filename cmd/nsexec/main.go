package main

import (
	"context"
	"os"
	"runtime"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/log"
	"github.com/YLonely/nsexec/nsenter"
	"github.com/YLonely/nsexec/resolver"
)

func init() {
	// Keep main on the main OS thread. Namespaces are joined by the thread
	// and the process name shown by ps is the one of the main thread.
	runtime.LockOSThread()
}

func main() {
	env := resolver.Capture()
	runner := nsenter.NewRunner(env)
	app := newApp(func(ctx context.Context, req nsexec.Request) (int, error) {
		return runner.Run(ctx, req)
	})
	if err := app.Run(os.Args); err != nil {
		log.Raw().Error(err)
		os.Exit(nsexec.ExitFailure)
	}
}
