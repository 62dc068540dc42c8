package log

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type logItem struct {
	component string
	method    string
}

var (
	loggers = map[logItem]*logrus.Entry{}
	m       sync.Mutex
)

// Logger returns a cached entry carrying the component and method fields
func Logger(component, method string) *logrus.Entry {
	m.Lock()
	defer m.Unlock()
	item := logItem{
		component: component,
		method:    method,
	}
	if logger, exists := loggers[item]; exists {
		return logger
	}
	loggers[item] = logrus.WithFields(logrus.Fields{
		"component": component,
		"method":    method,
	})
	return loggers[item]
}

func Raw() *logrus.Logger {
	return logrus.StandardLogger()
}

func WithInterface(entry *logrus.Entry, key string, value interface{}) *logrus.Entry {
	valueJSON, _ := json.Marshal(value)
	return entry.WithField(key, string(valueJSON))
}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup configures the standard logger. Logs go to stderr, stdout belongs
// to the executed command.
func Setup(debug bool, format string) error {
	l := Raw()
	l.SetOutput(os.Stderr)
	switch format {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	if debug {
		l.SetLevel(logrus.DebugLevel)
		l.SetReportCaller(true)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	l.AddHook(NewPidHook())
	return nil
}
