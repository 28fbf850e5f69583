package go_func_utils

import (
	"fmt"
	"log"
	"runtime/debug"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger with its
// stack and then re-raised; the terminal UI hides stderr, so without this the
// crash reason would be lost.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}

// SafeCall runs fn on the calling goroutine and turns a panic into an error.
// Used for collaborators whose failures must not reach the caller.
func SafeCall(logger *log.Logger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("recovered panic in %s: %v", name, r)
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	return fn()
}
