// Package logger provides component-tagged structured logging.
//
// Every entry carries a "component" field so log lines from the accessor cache,
// the button API and the platform channels can be told apart.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	mu  sync.Mutex
	log = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func (l Level) logrus() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown names fall back to INFO.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(level.logrus())
}

// SetFormat switches between "text" (default) and "json" output.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetOutput redirects log output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
}

func entry(component string, fields map[string]any) *logrus.Entry {
	e := log.WithField("component", component)
	if len(fields) > 0 {
		e = e.WithFields(logrus.Fields(fields))
	}
	return e
}

func DebugC(component, message string) { entry(component, nil).Debug(message) }

func DebugCF(component, message string, fields map[string]any) {
	entry(component, fields).Debug(message)
}

func InfoC(component, message string) { entry(component, nil).Info(message) }

func InfoCF(component, message string, fields map[string]any) {
	entry(component, fields).Info(message)
}

func WarnC(component, message string) { entry(component, nil).Warn(message) }

func WarnCF(component, message string, fields map[string]any) {
	entry(component, fields).Warn(message)
}

func ErrorC(component, message string) { entry(component, nil).Error(message) }

func ErrorCF(component, message string, fields map[string]any) {
	entry(component, fields).Error(message)
}
