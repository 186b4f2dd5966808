package main

import (
	"os"

	"github.com/loykin/mediasmoke/internal/common"
)

// ExitHandler lets tests observe termination instead of exiting.
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler logs through the global logger and calls os.Exit.
type DefaultExitHandler struct{}

func (DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs err with keyvals and exits with the code matching err.
// The logger is looked up here so the configured level and format apply.
func (h DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	common.GetLogger().WithComponent("main").Error(msg, allKeyvals...)
	h.Exit(exitCode(err))
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = DefaultExitHandler{}
