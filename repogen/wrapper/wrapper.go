// Package wrapper provides decorators for repogen repositories.
//
// Wrappers apply cross-cutting concerns such as logging and tracing uniformly to
// any ReadRepo or WriteRepo, whatever its storage. They never change results or
// errors of the wrapped repository.
package wrapper

import (
	"runtime"
	"strings"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/entity"
	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/repogen"
)

const (
	stackTraceSize = 4096 // 4KB
	maxCallerDepth = 32
)

// ChainRead applies wrappers to repo. The first wrapper is the outermost one.
func ChainRead[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status, F any](
	repo repogen.ReadRepo[E, K, T, S, F],
	wrappers ...repogen.ReadWrapFunc[E, K, T, S, F],
) repogen.ReadRepo[E, K, T, S, F] {
	for i := len(wrappers) - 1; i >= 0; i-- {
		repo = wrappers[i](repo)
	}
	return repo
}

// ChainWrite applies wrappers to repo. The first wrapper is the outermost one.
func ChainWrite[E entity.Entity[K, T, S], K entity.Key, T entity.Timestamp[T], S entity.Status](
	repo repogen.WriteRepo[E, K, T, S],
	wrappers ...repogen.WriteWrapFunc[E, K, T, S],
) repogen.WriteRepo[E, K, T, S] {
	for i := len(wrappers) - 1; i >= 0; i-- {
		repo = wrappers[i](repo)
	}
	return repo
}

// callerInfo describes the first frame outside this package.
type callerInfo struct {
	method string
	file   string
	line   int
}

func caller() callerInfo {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and caller
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !isWrapperFrame(frame.Function) {
			return callerInfo{method: shortFuncName(frame.Function), file: frame.File, line: frame.Line}
		}
		if !more {
			return callerInfo{}
		}
	}
}

func isWrapperFrame(fn string) bool {
	return strings.Contains(fn, "/repogen/wrapper.")
}

// shortFuncName strips the import path from a fully qualified function name.
func shortFuncName(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

func stackTrace() string {
	buf := make([]byte, stackTraceSize)
	return string(buf[:runtime.Stack(buf, false)])
}
