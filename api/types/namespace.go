package types

import (
	"sort"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NamespaceType is the name of a namespace file under /proc/<pid>/ns
type NamespaceType string

const (
	NamespaceIPC NamespaceType = "ipc"
	NamespaceUTS NamespaceType = "uts"
	NamespaceNET NamespaceType = "net"
	NamespacePID NamespaceType = "pid"
	NamespaceMNT NamespaceType = "mnt"
)

// JoinOrder is the order in which namespaces are entered. mnt must stay last,
// entering it changes what the remaining /proc lookups resolve to.
var JoinOrder = []NamespaceType{
	NamespaceIPC,
	NamespaceUTS,
	NamespaceNET,
	NamespacePID,
	NamespaceMNT,
}

var specTypes = map[NamespaceType]specs.LinuxNamespaceType{
	NamespaceIPC: specs.IPCNamespace,
	NamespaceUTS: specs.UTSNamespace,
	NamespaceNET: specs.NetworkNamespace,
	NamespacePID: specs.PIDNamespace,
	NamespaceMNT: specs.MountNamespace,
}

var cloneFlags = map[NamespaceType]int{
	NamespaceIPC: unix.CLONE_NEWIPC,
	NamespaceUTS: unix.CLONE_NEWUTS,
	NamespaceNET: unix.CLONE_NEWNET,
	NamespacePID: unix.CLONE_NEWPID,
	NamespaceMNT: unix.CLONE_NEWNS,
}

// ParseNamespaceType accepts both the proc file name ("net") and the
// runtime-spec name ("network") of a namespace.
func ParseNamespaceType(s string) (NamespaceType, error) {
	t := NamespaceType(s)
	if _, exists := specTypes[t]; exists {
		return t, nil
	}
	for nt, st := range specTypes {
		if string(st) == s {
			return nt, nil
		}
	}
	return "", errors.Errorf("unsupported namespace type %q", s)
}

// SpecType returns the runtime-spec name of t
func (t NamespaceType) SpecType() specs.LinuxNamespaceType {
	return specTypes[t]
}

// CloneFlag returns the CLONE_NEW* flag used to verify t on setns
func (t NamespaceType) CloneFlag() (int, error) {
	if flag, exists := cloneFlags[t]; exists {
		return flag, nil
	}
	return -1, errors.Errorf("invalid ns type %s", string(t))
}

func (t NamespaceType) rank() int {
	for i, o := range JoinOrder {
		if o == t {
			return i
		}
	}
	return len(JoinOrder)
}

// SortNamespaceTypes removes duplicates and sorts ts in JoinOrder.
func SortNamespaceTypes(ts []NamespaceType) []NamespaceType {
	seen := map[NamespaceType]bool{}
	ret := make([]NamespaceType, 0, len(ts))
	for _, t := range ts {
		if seen[t] {
			continue
		}
		seen[t] = true
		ret = append(ret, t)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].rank() < ret[j].rank()
	})
	return ret
}
