package signals

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"
	"unsafe"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ContinueSignal resumes a launcher waiting at the gate
var ContinueSignal os.Signal = syscall.SIGCONT

// Gate holds the launcher until an external controller sends
// ContinueSignal. While waiting the process advertises
// nsexec.PausedProcessName so that the controller can find it.
type Gate struct {
	getName func() (string, error)
	setName func(string) error
}

func NewGate() *Gate {
	return &Gate{
		getName: GetProcessName,
		setName: SetProcessName,
	}
}

// Wait blocks until ContinueSignal is received or ctx is done. There is
// no timeout, a controller which never resumes us keeps us here forever.
func (g *Gate) Wait(ctx context.Context) error {
	logger := log.Logger(nsexec.GateComponent, "Wait")
	// single slot, the signal carries nothing but the wake up itself
	wake := make(chan os.Signal, 1)
	signal.Notify(wake, ContinueSignal)
	defer signal.Stop(wake)

	name, err := g.getName()
	if err != nil || name == "" {
		name = nsexec.ProcessName
	}
	if err := g.setName(nsexec.PausedProcessName); err != nil {
		return errors.Wrap(err, "failed to set process name")
	}
	defer func() {
		if err := g.setName(name); err != nil {
			logger.WithError(err).Warn("failed to restore process name")
		}
	}()
	logger.Debug("waiting for continue signal")
	select {
	case <-wake:
		logger.Debug("resumed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetProcessName sets the name of the calling thread, it shows up as the
// process name when called on the main thread.
func SetProcessName(name string) error {
	p, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
}

// GetProcessName returns the name of the calling thread
func GetProcessName() (string, error) {
	// the kernel limits the name to 16 bytes including the NUL
	buf := make([]byte, 16)
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}
