package ble

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used by every package of the driver.
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

var logger Logger
var loggerMu sync.Mutex

// SetLogLevel sets the level of the default logger from a logrus level name
// such as "debug" or "warn".
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	l := GetLogger()
	lg, ok := l.(*defaultLogger)
	if !ok {
		l.Warnf("non-default logger, ignoring level %v", level)
		return nil
	}
	lg.Entry.Logger.SetLevel(lvl)
	return nil
}

// SetLogLevelMax enables trace logging on the default logger.
func SetLogLevelMax() {
	_ = SetLogLevel(logrus.TraceLevel.String())
}

// SetLogger replaces the package logger.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the package logger, building the default one on first use.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = buildDefaultLogger()
	}

	return logger
}

// PkgLogger returns a child of the package logger tagged with the package name.
func PkgLogger(pkg string) Logger {
	return GetLogger().ChildLogger(map[string]interface{}{"pkg": pkg})
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
