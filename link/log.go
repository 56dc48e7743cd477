package link

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is this module's own diagnostic-logging contract, grounded on
// rigado/ble's Logger/ChildLogger idiom. It is independent of LogFunc,
// which carries the upper stack's own trace callback.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

var (
	logger   Logger
	loggerMu sync.Mutex
)

// SetLogger installs the package-wide default Logger, from which every
// Transport's child logger is derived unless overridden with WithLogger.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the package-wide default Logger, building one backed
// by logrus on first use.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = buildDefaultLogger()
	}
	return logger
}

type defaultLogger struct {
	*logrus.Entry
}

func buildDefaultLogger() Logger {
	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     logrus.InfoLevel,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}
	return &defaultLogger{Entry: l.WithFields(map[string]interface{}{})}
}

func (d *defaultLogger) ChildLogger(ff map[string]interface{}) Logger {
	return &defaultLogger{d.Entry.WithFields(ff)}
}

// linkLogger builds the child-logger tags a Transport attaches for the
// life of one Open/Close cycle: which LowerTransport it's driving, so
// that a process juggling several links (serial port vs. loopback pair
// in the same demo, say) can tell their log lines apart.
func linkLogger(base Logger, lower LowerTransport) Logger {
	return base.ChildLogger(map[string]interface{}{
		"pkg":   "link",
		"lower": fmt.Sprintf("%T", lower),
	})
}

// withState derives a child logger tagged with the state the Transport
// just entered, so state-change log lines carry their own state without
// repeating it in every Debugf call site.
func withState(l Logger, s State) Logger {
	return l.ChildLogger(map[string]interface{}{"state": s.String()})
}
