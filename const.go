package nsexec

// Component names used as the "component" field of log entries
const (
	MainComponent      = "main"
	NamespaceComponent = "namespace"
	GateComponent      = "gate"
	ResolverComponent  = "resolver"
	LauncherComponent  = "launcher"
)

const (
	// ProcessName is the name the launcher advertises while running
	ProcessName = "nsexec"
	// PausedProcessName is advertised while waiting at the gate
	PausedProcessName = "pause"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	// ExitCommandNotFound is returned when the command can't be found or executed
	ExitCommandNotFound = 127
)
