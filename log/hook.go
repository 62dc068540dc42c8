package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// PidHook stamps every entry with the pid of the process writing it, which
// tells the launcher apart from a child that failed before exec.
type PidHook struct {
	Field  string
	levels []logrus.Level
	getpid func() int
}

func NewPidHook(levels ...logrus.Level) *PidHook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &PidHook{
		Field:  "pid",
		levels: levels,
		getpid: os.Getpid,
	}
}

func (hook *PidHook) Fire(entry *logrus.Entry) error {
	entry.Data[hook.Field] = hook.getpid()
	return nil
}

func (hook *PidHook) Levels() []logrus.Level {
	return hook.levels
}
