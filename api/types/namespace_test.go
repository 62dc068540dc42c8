package types

import (
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestParseNamespaceType(t *testing.T) {
	cases := map[string]NamespaceType{
		"ipc":     NamespaceIPC,
		"uts":     NamespaceUTS,
		"net":     NamespaceNET,
		"network": NamespaceNET,
		"pid":     NamespacePID,
		"mnt":     NamespaceMNT,
		"mount":   NamespaceMNT,
	}
	for in, expected := range cases {
		got, err := ParseNamespaceType(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, got, in)
	}
	_, err := ParseNamespaceType("user")
	assert.Error(t, err)
	_, err = ParseNamespaceType("")
	assert.Error(t, err)
}

func TestSortNamespaceTypes(t *testing.T) {
	in := []NamespaceType{NamespaceMNT, NamespacePID, NamespaceIPC, NamespaceMNT, NamespaceNET, NamespaceUTS}
	assert.Equal(t, JoinOrder, SortNamespaceTypes(in))

	assert.Equal(t,
		[]NamespaceType{NamespaceUTS, NamespaceMNT},
		SortNamespaceTypes([]NamespaceType{NamespaceMNT, NamespaceUTS}))
	assert.Empty(t, SortNamespaceTypes(nil))
}

func TestNamespaceTypeMapping(t *testing.T) {
	assert.Equal(t, specs.MountNamespace, NamespaceMNT.SpecType())
	assert.Equal(t, specs.NetworkNamespace, NamespaceNET.SpecType())

	flag, err := NamespaceMNT.CloneFlag()
	require.NoError(t, err)
	assert.Equal(t, unix.CLONE_NEWNS, flag)

	_, err = NamespaceType("cgroup").CloneFlag()
	assert.Error(t, err)
}
