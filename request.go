package nsexec

import (
	"github.com/YLonely/nsexec/api/types"
	"github.com/pkg/errors"
)

// Request describes one invocation of the launcher
type Request struct {
	Target     int                   `json:"target"`
	Namespaces []types.NamespaceType `json:"namespaces,omitempty"`
	Pause      bool                  `json:"pause"`
	Args       []string              `json:"args"`
}

func (r Request) Validate() error {
	if r.Target <= 0 {
		return errors.Wrapf(ErrInvalidTarget, "%d is not a valid process ID", r.Target)
	}
	if len(r.Args) == 0 || r.Args[0] == "" {
		return ErrEmptyCommand
	}
	return nil
}
