package namespace

import (
	"fmt"
	"path/filepath"

	"github.com/YLonely/nsexec/api/types"
	"golang.org/x/sys/unix"
)

// DefaultProcRoot is where the proc filesystem is mounted
const DefaultProcRoot = "/proc"

// Identity is the device/inode pair of a namespace file. Two namespace
// files refer to the same namespace iff their identities are equal.
type Identity struct {
	Dev uint64
	Ino uint64
}

func (id Identity) String() string {
	return fmt.Sprintf("%d:%d", id.Dev, id.Ino)
}

// NSPath returns the path of the namespace file of type t of process pid
func NSPath(procRoot string, pid int, t types.NamespaceType) string {
	return filepath.Join(procRoot, fmt.Sprint(pid), "ns", string(t))
}

// SelfNSPath returns the path of the caller's own namespace file of type t
func SelfNSPath(procRoot string, t types.NamespaceType) string {
	return filepath.Join(procRoot, "self", "ns", string(t))
}

// StatIdentity returns the identity of the namespace file at path
func StatIdentity(path string) (Identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Identity{}, err
	}
	return Identity{Dev: uint64(st.Dev), Ino: st.Ino}, nil
}
