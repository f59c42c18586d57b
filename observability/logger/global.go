package logger

import (
	"sync"
	"sync/atomic"
)

//nolint:gochecknoglobals // process wide logger
var (
	global   atomic.Value // stores Logger
	setOnce  sync.Once
	initOnce sync.Once
)

// SetGlobal configures the process wide logger. It must be called once, before
// any component takes a named logger from this package.
func SetGlobal(cfg Config) {
	called := false
	setOnce.Do(func() {
		initOnce.Do(func() {})

		l, err := newLogger(cfg)
		if err != nil {
			panic("[logger]: failed to initialize global logger: " + err.Error())
		}
		global.Store(l)
		called = true
	})
	if !called {
		panic("[logger]: SetGlobal can only be called once")
	}
}

// Named returns a sub-scoped child of the global logger. Components keep the
// returned logger, so it reflects the global configuration at call time.
func Named(name string) Logger {
	return getGlobal().Named(name)
}

// Sync flushes the global logger. Call it on shutdown.
func Sync() error {
	return getGlobal().Sync()
}

// getGlobal returns the global logger, falling back to a debug level pretty
// logger when SetGlobal has not been called.
func getGlobal() Logger {
	initOnce.Do(func() {
		l, err := newLogger(Config{Level: levelDebug, Encoding: encPretty})
		if err != nil {
			panic("[logger]: failed to initialize default logger: " + err.Error())
		}
		global.Store(l)
	})

	l, ok := global.Load().(Logger)
	if !ok {
		panic("[logger]: global contains invalid type")
	}
	return l
}
