package launcher

import (
	"os"
	"syscall"
	"testing"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/resolver"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func shell(script string) *resolver.Command {
	return &resolver.Command{
		Path: "/bin/sh",
		Args: []string{"/bin/sh", "-c", script},
		Env:  os.Environ(),
	}
}

func TestLaunchExitStatus(t *testing.T) {
	l := New()
	code, err := l.Launch(shell("exit 0"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = l.Launch(shell("exit 3"))
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestLaunchPassesEnv(t *testing.T) {
	l := New()
	cmd := shell(`test "$PATH" = "/usr/bin:/bin"`)
	cmd.Env = []string{"PATH=/usr/bin:/bin"}
	code, err := l.Launch(cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestLaunchKilledBySignal(t *testing.T) {
	code, err := New().Launch(shell("kill -KILL $$"))
	require.NoError(t, err)
	assert.Equal(t, nsexec.ExitFailure, code)
	assert.NotEqual(t, nsexec.ExitCommandNotFound, code)
}

func TestLaunchCommandNotFound(t *testing.T) {
	code, err := New().Launch(&resolver.Command{
		Path: "/nonexistent/command",
		Args: []string{"/nonexistent/command"},
	})
	require.Error(t, err)
	assert.Equal(t, nsexec.ExitCommandNotFound, code)
	assert.Equal(t, nsexec.ErrExec, errors.Cause(err))
	assert.Contains(t, err.Error(), "/nonexistent/command")
	assert.Equal(t, nsexec.ExitCommandNotFound, nsexec.ExitCode(err))
}

func TestLaunchForkError(t *testing.T) {
	fwd := &fakeForwarder{}
	l := New()
	l.newForwarder = func() forwarder { return fwd }
	l.forkExec = func(string, []string, *syscall.ProcAttr) (int, error) {
		return 0, syscall.EAGAIN
	}
	code, err := l.Launch(shell("true"))
	assert.Equal(t, nsexec.ExitFailure, code)
	assert.Equal(t, nsexec.ErrFork, errors.Cause(err))
	assert.Empty(t, fwd.started)
	assert.True(t, fwd.stopped)
}

func TestLaunchForwardsBeforeFork(t *testing.T) {
	var steps []string
	fwd := &fakeForwarder{}
	l, _ := fakeLauncher(func(ws *unix.WaitStatus) error {
		steps = append(steps, "wait")
		return nil
	})
	l.newForwarder = func() forwarder {
		steps = append(steps, "subscribe")
		return fwd
	}
	fork := l.forkExec
	l.forkExec = func(argv0 string, argv []string, attr *syscall.ProcAttr) (int, error) {
		steps = append(steps, "fork")
		return fork(argv0, argv, attr)
	}
	code, err := l.Launch(shell("true"))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"subscribe", "fork", "wait"}, steps)
	assert.Equal(t, []int{4242}, fwd.started)
	assert.True(t, fwd.stopped)
}

type fakeForwarder struct {
	started []int
	stopped bool
}

func (f *fakeForwarder) Start(pid int) { f.started = append(f.started, pid) }

func (f *fakeForwarder) Stop() { f.stopped = true }

func fakeLauncher(waits ...func(ws *unix.WaitStatus) error) (*Launcher, *int) {
	calls := 0
	l := New()
	l.forkExec = func(string, []string, *syscall.ProcAttr) (int, error) {
		return 4242, nil
	}
	l.newForwarder = func() forwarder { return &fakeForwarder{} }
	l.wait4 = func(pid int, ws *unix.WaitStatus, options int, rusage *unix.Rusage) (int, error) {
		w := waits[calls]
		calls++
		return pid, w(ws)
	}
	return l, &calls
}

func TestLaunchRetriesInterruptedWait(t *testing.T) {
	l, calls := fakeLauncher(
		func(*unix.WaitStatus) error { return unix.EINTR },
		func(*unix.WaitStatus) error { return unix.EINTR },
		func(ws *unix.WaitStatus) error {
			*ws = unix.WaitStatus(5 << 8)
			return nil
		},
	)
	code, err := l.Launch(shell("true"))
	require.NoError(t, err)
	assert.Equal(t, 5, code)
	assert.Equal(t, 3, *calls)
}

func TestLaunchWaitError(t *testing.T) {
	l, _ := fakeLauncher(func(*unix.WaitStatus) error { return unix.ECHILD })
	code, err := l.Launch(shell("true"))
	assert.Equal(t, nsexec.ExitFailure, code)
	assert.Equal(t, nsexec.ErrWait, errors.Cause(err))
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(unix.WaitStatus(0)))
	assert.Equal(t, 42, ExitStatus(unix.WaitStatus(42<<8)))
	assert.Equal(t, nsexec.ExitFailure, ExitStatus(unix.WaitStatus(unix.SIGKILL)))
}
