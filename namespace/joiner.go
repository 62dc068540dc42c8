package namespace

import (
	"os"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/api/types"
	"github.com/YLonely/nsexec/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Result is the outcome of a successful Join
type Result int

const (
	// Joined means setns was called and succeeded
	Joined Result = iota
	// AlreadyMember means the caller was already in the target namespace,
	// or the identities could not be compared, and setns was skipped
	AlreadyMember
)

func (r Result) String() string {
	if r == Joined {
		return "joined"
	}
	return "already-member"
}

// Joiner enters the namespaces of a target process. Namespaces are per
// thread, so the caller must stay locked to its OS thread for as long as
// the joined namespaces are needed.
type Joiner struct {
	ProcRoot string

	stat    func(path string) (Identity, error)
	open    func(path string) (*os.File, error)
	setns   func(fd int, nstype int) error
	unshare func(flags int) error

	fsUnshared bool
}

func NewJoiner() *Joiner {
	return &Joiner{
		ProcRoot: DefaultProcRoot,
		stat:     StatIdentity,
		open: func(path string) (*os.File, error) {
			return os.OpenFile(path, os.O_RDONLY, 0)
		},
		setns:   unix.Setns,
		unshare: unix.Unshare,
	}
}

// Join enters the namespace of type t of process pid unless the caller is
// already a member of it. Calling setns on the caller's own namespace is
// avoided on purpose, some kernels reject it.
func (j *Joiner) Join(pid int, t types.NamespaceType) (Result, error) {
	logger := log.Logger(nsexec.NamespaceComponent, "Join").WithField("type", t)
	flag, err := t.CloneFlag()
	if err != nil {
		return AlreadyMember, err
	}
	target := NSPath(j.ProcRoot, pid, t)
	self := SelfNSPath(j.ProcRoot, t)
	selfID, err := j.stat(self)
	if err != nil {
		logger.WithError(err).Debugf("can't stat %s, skip", self)
		return AlreadyMember, nil
	}
	targetID, err := j.stat(target)
	if err != nil {
		logger.WithError(err).Debugf("can't stat %s, skip", target)
		return AlreadyMember, nil
	}
	if selfID == targetID {
		logger.Debugf("already in namespace %s", targetID)
		return AlreadyMember, nil
	}
	f, err := j.open(target)
	if err != nil {
		return AlreadyMember, &nsexec.NamespaceError{Type: t, Path: target, Op: nsexec.ErrNamespaceOpen, Err: err}
	}
	defer f.Close()
	if t == types.NamespaceMNT && !j.fsUnshared {
		// setns(CLONE_NEWNS) requires a fs_struct not shared with other threads
		if err := j.unshare(unix.CLONE_FS); err != nil {
			return AlreadyMember, &nsexec.NamespaceError{
				Type: t,
				Path: target,
				Op:   nsexec.ErrNamespaceJoin,
				Err:  errors.Wrap(err, "unshare(CLONE_FS)"),
			}
		}
		j.fsUnshared = true
	}
	if err := j.setns(int(f.Fd()), flag); err != nil {
		return AlreadyMember, &nsexec.NamespaceError{Type: t, Path: target, Op: nsexec.ErrNamespaceJoin, Err: err}
	}
	logger.Debugf("joined namespace %s", targetID)
	return Joined, nil
}

// JoinAll enters every namespace in ts in JoinOrder. It stops at the first
// failure, a partially joined set of namespaces is never acceptable.
func (j *Joiner) JoinAll(pid int, ts []types.NamespaceType) error {
	for _, t := range types.SortNamespaceTypes(ts) {
		if _, err := j.Join(pid, t); err != nil {
			return errors.Wrapf(err, "failed to enter %s namespace", t)
		}
	}
	return nil
}
