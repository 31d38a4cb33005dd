// internal/launcher/errors.go
package launcher

import (
	"fmt"
	"os"
	"strings"
)

// LaunchFailure classifies why a launch attempt never produced a usable
// DevTools endpoint.
type LaunchFailure int

const (
	// FailureTimeout means the configured launch timeout elapsed before the
	// browser announced its DevTools endpoint.
	FailureTimeout LaunchFailure = iota
	// FailureExit means the browser process terminated before announcing the
	// endpoint, e.g. it crashed on startup.
	FailureExit
	// FailureIO means reading the diagnostic stream or observing the process
	// exit failed at the OS level.
	FailureIO
)

func (f LaunchFailure) String() string {
	switch f {
	case FailureTimeout:
		return "timeout"
	case FailureExit:
		return "exit"
	case FailureIO:
		return "io"
	default:
		return "unknown"
	}
}

// LaunchError is returned when a browser launch fails. It always carries the
// stderr output captured up to the point of failure so callers can diagnose
// what the browser printed before things went wrong.
type LaunchError struct {
	Failure LaunchFailure
	// Stderr holds everything read from the diagnostic stream so far.
	Stderr []byte
	// State is the exit state of the process for FailureExit, nil otherwise.
	State *os.ProcessState
	// Err is the underlying cause for FailureIO, nil otherwise.
	Err error
}

func (e *LaunchError) Error() string {
	var b strings.Builder
	switch e.Failure {
	case FailureTimeout:
		b.WriteString("browser launch timed out waiting for the DevTools endpoint")
	case FailureExit:
		fmt.Fprintf(&b, "browser process exited before the DevTools endpoint was announced: %v", e.State)
	case FailureIO:
		fmt.Fprintf(&b, "i/o error during browser launch: %v", e.Err)
	}
	if len(e.Stderr) > 0 {
		fmt.Fprintf(&b, " (stderr: %q)", string(e.Stderr))
	}
	return b.String()
}

func (e *LaunchError) Unwrap() error { return e.Err }
