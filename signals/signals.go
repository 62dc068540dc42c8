package signals

import (
	"os"
	"os/signal"
	"syscall"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/log"
	"golang.org/x/sys/unix"
)

// HandledSignals are relayed to the child while the launcher waits for it
var HandledSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// terminalSignals already reach a child in the foreground process group
// straight from the terminal
var terminalSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGQUIT,
}

// Forwarder relays HandledSignals received by the launcher to its child.
// It subscribes on creation, so it must be created before the fork: a
// signal arriving before Start is held and relayed once the pid is known.
type Forwarder struct {
	signalC chan os.Signal
	done    chan struct{}
	skip    map[os.Signal]bool
}

func NewForwarder() *Forwarder {
	return newForwarder(inForeground())
}

func newForwarder(foreground bool) *Forwarder {
	f := &Forwarder{
		signalC: make(chan os.Signal, 2048),
		done:    make(chan struct{}),
		skip:    map[os.Signal]bool{},
	}
	if foreground {
		for _, s := range terminalSignals {
			f.skip[s] = true
		}
	}
	signal.Notify(f.signalC, HandledSignals...)
	return f
}

// Start relays signals to pid until Stop is called
func (f *Forwarder) Start(pid int) {
	logger := log.Logger(nsexec.LauncherComponent, "Forward")
	go func() {
		for {
			select {
			case s := <-f.signalC:
				if f.skip[s] {
					logger.Debugf("%s already delivered to %d by the terminal", s, pid)
					continue
				}
				logger.Debugf("forward %s to %d", s, pid)
				if err := unix.Kill(pid, s.(syscall.Signal)); err != nil {
					logger.WithError(err).Warnf("failed to forward %s", s)
				}
			case <-f.done:
				return
			}
		}
	}()
}

func (f *Forwarder) Stop() {
	signal.Stop(f.signalC)
	close(f.done)
}

// inForeground reports whether the launcher, and so the child which shares
// its process group, is the foreground job of the terminal on stdin.
func inForeground() bool {
	pgrp, err := unix.IoctlGetInt(int(os.Stdin.Fd()), unix.TIOCGPGRP)
	return err == nil && pgrp == unix.Getpgrp()
}
