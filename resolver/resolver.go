// Package resolver locates the executable to run after the namespaces of
// the target have been joined. A minimal container root filesystem often
// comes with an empty PATH or one missing /bin, the resolver repairs the
// search path before looking the command up.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	nsexec "github.com/YLonely/nsexec"
	"github.com/YLonely/nsexec/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	pathKey = "PATH"
	homeKey = "HOME"
	binDir  = "/bin"
)

// Environment is a snapshot of the launcher's environment taken before
// any namespace was joined.
type Environment struct {
	Path string
	Home string
}

// Capture snapshots the current process environment
func Capture() Environment {
	return Environment{
		Path: os.Getenv(pathKey),
		Home: os.Getenv(homeKey),
	}
}

// Command is a resolved command ready to be executed
type Command struct {
	// Path is passed to execve
	Path string
	Args []string
	Env  []string
}

type Resolver struct {
	original Environment
	current  func() []string
	exists   func(path string) bool
	runnable func(path string) bool
}

// New returns a resolver which falls back to the PATH of original
func New(original Environment) *Resolver {
	return &Resolver{
		original: original,
		current:  os.Environ,
		exists: func(path string) bool {
			return unix.Access(path, unix.F_OK) == nil
		},
		runnable: isExecutable,
	}
}

// Resolve repairs PATH and HOME and looks args[0] up. args itself is not
// modified. A command which can't be found yields nsexec.ErrExec.
func (r *Resolver) Resolve(args []string) (*Command, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, nsexec.ErrEmptyCommand
	}
	logger := log.Logger(nsexec.ResolverComponent, "Resolve")
	env := r.current()
	path, _ := lookupEnv(env, pathKey)
	if path == "" && r.original.Path != "" {
		logger.Debugf("PATH is empty, restore it to %s", r.original.Path)
		path = r.original.Path
	}
	path = EnsureBin(path)

	argv := make([]string, len(args))
	copy(argv, args)
	if !r.exists(argv[0]) {
		if found := r.search(argv[0], path); found != "" {
			logger.Debugf("resolved %s to %s", argv[0], found)
			argv[0] = found
		}
	}
	execPath, err := r.lookPath(argv[0], path)
	if err != nil {
		return nil, err
	}
	env = setEnv(env, pathKey, path)
	if home, _ := lookupEnv(env, homeKey); home == "" && r.original.Home != "" {
		env = setEnv(env, homeKey, r.original.Home)
	}
	return &Command{
		Path: execPath,
		Args: argv,
		Env:  env,
	}, nil
}

// search returns the first <dir>/<name> in path that exists
func (r *Resolver) search(name, path string) string {
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		candidate := dir + "/" + name
		if r.exists(candidate) {
			return candidate
		}
	}
	return ""
}

// lookPath mimics the PATH search of execvp: a name without a slash is
// only ever looked up in path, never in the current directory.
func (r *Resolver) lookPath(name, path string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if r.runnable(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(nsexec.ErrExec, "%s: %v", name, unix.ENOENT)
}

// EnsureBin appends /bin to path unless one of its entries is exactly /bin.
// An empty path becomes "/bin" rather than ":/bin", the current directory
// is never added to the search path.
func EnsureBin(path string) string {
	if path == "" {
		return binDir
	}
	for _, dir := range strings.Split(path, ":") {
		if dir == binDir {
			return path
		}
	}
	return path + ":" + binDir
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

func lookupEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			return env[i][len(prefix):], true
		}
	}
	return "", false
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	ret := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			ret = append(ret, kv)
		}
	}
	return append(ret, prefix+value)
}
