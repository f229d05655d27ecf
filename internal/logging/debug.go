package logging

import (
	"fmt"
	"io"
	"os"
)

// DebugEnv is the environment variable that turns on debug tracing.
const DebugEnv = "TM_DEBUG"

var debugOutput io.Writer = os.Stderr

// DebugEnabled returns true if debug mode is enabled via TM_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(debugOutput, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(debugOutput, args...)
	}
}
