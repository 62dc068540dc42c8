package launcher

import (
	"os"
	"syscall"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/log"
	"github.com/YLonely/nsexec/resolver"
	"github.com/YLonely/nsexec/signals"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Launcher runs a resolved command as a child of the calling thread, so
// the child is created inside every namespace the thread has joined.
type Launcher struct {
	// Files become fd 0, 1 and 2 of the child
	Files []uintptr

	forkExec     func(argv0 string, argv []string, attr *syscall.ProcAttr) (int, error)
	wait4        func(pid int, ws *unix.WaitStatus, options int, rusage *unix.Rusage) (int, error)
	newForwarder func() forwarder
}

type forwarder interface {
	Start(pid int)
	Stop()
}

func New() *Launcher {
	return &Launcher{
		Files:    []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()},
		forkExec: syscall.ForkExec,
		wait4:    unix.Wait4,
		newForwarder: func() forwarder {
			return signals.NewForwarder()
		},
	}
}

// Launch starts cmd, waits for it and returns the exit code the launcher
// should exit with.
func (l *Launcher) Launch(cmd *resolver.Command) (int, error) {
	logger := log.Logger(nsexec.LauncherComponent, "Launch")
	// subscribe before the fork, a signal must not kill us while the child
	// is still unreaped
	fwd := l.newForwarder()
	defer fwd.Stop()
	pid, err := l.forkExec(cmd.Path, cmd.Args, &syscall.ProcAttr{
		Env:   cmd.Env,
		Files: l.Files,
	})
	if err != nil {
		if isForkError(err) {
			return nsexec.ExitFailure, errors.Wrapf(nsexec.ErrFork, "%v", err)
		}
		return nsexec.ExitCommandNotFound, errors.Wrapf(nsexec.ErrExec, "%s: %v", cmd.Args[0], err)
	}
	logger.WithField("child", pid).Debugf("started %s", cmd.Path)
	fwd.Start(pid)

	ws, err := l.wait(pid)
	if err != nil {
		return nsexec.ExitFailure, errors.Wrapf(nsexec.ErrWait, "child %d: %v", pid, err)
	}
	if ws.Signaled() {
		logger.WithField("child", pid).Debugf("child killed by %s", ws.Signal())
	}
	return ExitStatus(ws), nil
}

// wait reaps pid, a wait interrupted by a signal is retried
func (l *Launcher) wait(pid int) (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		_, err := l.wait4(pid, &ws, 0, nil)
		if err == nil {
			return ws, nil
		}
		if err != unix.EINTR {
			return ws, err
		}
	}
}

// ExitStatus returns the status of a child which exited normally and
// ExitFailure for one killed by a signal.
func ExitStatus(ws unix.WaitStatus) int {
	if ws.Exited() {
		return ws.ExitStatus()
	}
	return nsexec.ExitFailure
}

// errors reported by clone itself, anything else comes from the child.
// ForkExec returns the same error for a failed clone and a failed execve,
// so an execve failing with EAGAIN or ENOMEM is reported as a fork failure.
func isForkError(err error) bool {
	switch err {
	case syscall.EAGAIN, syscall.ENOMEM:
		return true
	}
	return false
}
