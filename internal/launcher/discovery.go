// internal/launcher/discovery.go
package launcher

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// devtoolsAnnouncement is the marker the browser prints on stderr once the
// remote debugging socket is up, e.g.
//
//	DevTools listening on ws://127.0.0.1:9222/devtools/browser/abc
const devtoolsAnnouncement = "listening on "

type lineEvent struct {
	line []byte
	err  error
	n    int
}

// launched is the slice of Process the discovery race depends on. Narrowed to
// an interface so the race can be exercised against fake streams and exit
// signals.
type launched interface {
	Stderr() io.ReadCloser
	Done() <-chan struct{}
	ExitState() (*os.ProcessState, error)
}

// ResolveWebSocketURL races three signals against each other and returns the
// DevTools WebSocket URL the browser announces on its diagnostic stream:
//
//  1. the launch timeout elapsing,
//  2. the browser process exiting (e.g. crashing on startup),
//  3. the next line of stderr becoming available.
//
// Exactly one outcome wins. Any failure carries all stderr captured so far.
// The caller owns process cleanup on failure; Launch guarantees the child is
// reaped before an error propagates.
func ResolveWebSocketURL(proc launched, timeout time.Duration, logger *zap.Logger) (string, error) {
	stderr := proc.Stderr()
	captured := &bytes.Buffer{}

	lines := make(chan lineEvent)
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		buf := bufio.NewReader(stderr)
		for {
			line, err := buf.ReadBytes('\n')
			select {
			case lines <- lineEvent{line: line, err: err, n: len(line)}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	// The reader goroutine must never outlive the race. Closing the stream
	// unblocks a pending Read; the stop channel unblocks a pending send.
	defer func() {
		stderr.Close()
		close(stop)
		<-readerDone
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return "", &LaunchError{Failure: FailureTimeout, Stderr: captured.Bytes()}

		case <-proc.Done():
			state, err := proc.ExitState()
			if err != nil {
				return "", &LaunchError{Failure: FailureIO, Err: err, Stderr: captured.Bytes()}
			}
			return "", &LaunchError{Failure: FailureExit, State: state, Stderr: captured.Bytes()}

		case ev := <-lines:
			captured.Write(ev.line)
			if ev.err != nil {
				// The announcement can be the very last thing written before
				// the stream closes, with no trailing newline. Scan the
				// partial line before treating the close as a failure.
				if ev.n > 0 && utf8.Valid(ev.line) {
					if url, ok := extractWebSocketURL(string(ev.line)); ok {
						return url, nil
					}
				}
				if ev.err == io.EOF && ev.n == 0 {
					// Stream closed with nothing left and no exit observed
					// yet. Never swallow this; it means the browser went away
					// without telling us how.
					ev.err = io.ErrUnexpectedEOF
				}
				return "", &LaunchError{Failure: FailureIO, Err: ev.err, Stderr: captured.Bytes()}
			}
			if !utf8.Valid(ev.line) {
				return "", &LaunchError{
					Failure: FailureIO,
					Err:     errInvalidUTF8,
					Stderr:  captured.Bytes(),
				}
			}
			line := string(ev.line)
			logger.Debug("Browser stderr line.", zap.String("line", strings.TrimSpace(line)))
			if url, ok := extractWebSocketURL(line); ok {
				return url, nil
			}
			// A line matching the prefix but not the full announcement shape
			// is not an error, the race simply continues.
		}
	}
}

var errInvalidUTF8 = &invalidUTF8Error{}

type invalidUTF8Error struct{}

func (*invalidUTF8Error) Error() string { return "diagnostic stream did not contain valid UTF-8" }

// extractWebSocketURL scans one stderr line for the DevTools announcement.
func extractWebSocketURL(line string) (string, bool) {
	idx := strings.LastIndex(line, devtoolsAnnouncement)
	if idx < 0 {
		return "", false
	}
	candidate := line[idx+len(devtoolsAnnouncement):]
	if strings.HasPrefix(candidate, "ws") && strings.Contains(candidate, "devtools/browser") {
		return strings.TrimSpace(candidate), true
	}
	return "", false
}
