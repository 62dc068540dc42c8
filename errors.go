package nsexec

import (
	"fmt"

	"github.com/YLonely/nsexec/api/types"
	"github.com/pkg/errors"
)

var (
	ErrInvalidTarget = errors.New("invalid target process ID")
	ErrEmptyCommand  = errors.New("no command to execute")
	ErrNamespaceOpen = errors.New("can't open namespace file")
	ErrNamespaceJoin = errors.New("can't join namespace")
	ErrFork          = errors.New("fork failed")
	ErrExec          = errors.New("exec failed")
	ErrWait          = errors.New("wait failed")
)

// NamespaceError records which namespace failed to be entered
type NamespaceError struct {
	Type types.NamespaceType
	Path string
	// Op is ErrNamespaceOpen or ErrNamespaceJoin
	Op  error
	Err error
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("%s namespace %s: %s: %v", e.Type, e.Path, e.Op, e.Err)
}

// Cause returns Op so that errors.Cause yields the sentinel error
func (e *NamespaceError) Cause() error { return e.Op }

func (e *NamespaceError) Unwrap() error { return e.Op }

// ExitCode maps an error returned by the launcher to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Cause(err) == ErrExec {
		return ExitCommandNotFound
	}
	return ExitFailure
}
