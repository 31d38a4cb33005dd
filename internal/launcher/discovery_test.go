// internal/launcher/discovery_test.go
package launcher

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// fakeLaunched stands in for a spawned process: a scripted diagnostic stream
// plus a controllable exit signal.
type fakeLaunched struct {
	stderr  io.ReadCloser
	done    chan struct{}
	state   *os.ProcessState
	waitErr error
}

func (f *fakeLaunched) Stderr() io.ReadCloser                { return f.stderr }
func (f *fakeLaunched) Done() <-chan struct{}                { return f.done }
func (f *fakeLaunched) ExitState() (*os.ProcessState, error) { return f.state, f.waitErr }

// newFakeLaunched returns a fake whose stderr is the write end of a pipe the
// test controls.
func newFakeLaunched(t *testing.T) (*fakeLaunched, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	return &fakeLaunched{stderr: pr, done: make(chan struct{})}, pw
}

func TestResolveWebSocketURL(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("should return the announced endpoint", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		go func() {
			io.WriteString(pw, "[1124/101225.123:ERROR:gpu_init.cc] something benign\n")
			io.WriteString(pw, "DevTools listening on ws://127.0.0.1:9222/devtools/browser/abc-123\n")
		}()

		url, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc-123", url)
		pw.Close()
	})

	t.Run("should ignore lines that only resemble the announcement", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		go func() {
			io.WriteString(pw, "something was listening on port 80 earlier\n")
			io.WriteString(pw, "DevTools listening on ws://127.0.0.1:9222/devtools/browser/real\n")
		}()

		url, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/real", url)
		pw.Close()
	})

	t.Run("should time out when nothing is announced", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		defer pw.Close()

		_, err := ResolveWebSocketURL(proc, 20*time.Millisecond, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureTimeout, launchErr.Failure)
	})

	t.Run("should capture stderr seen before the timeout", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		defer pw.Close()
		go io.WriteString(pw, "fontconfig warning\n")

		_, err := ResolveWebSocketURL(proc, 50*time.Millisecond, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Contains(t, string(launchErr.Stderr), "fontconfig warning")
	})

	t.Run("should report a process exit before the announcement", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		defer pw.Close()
		close(proc.done)

		_, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureExit, launchErr.Failure)
	})

	t.Run("should surface a wait failure as an io failure", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		defer pw.Close()
		proc.waitErr = errors.New("wait: no child processes")
		close(proc.done)

		_, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureIO, launchErr.Failure)
		assert.ErrorContains(t, launchErr, "no child processes")
	})

	t.Run("should accept an announcement on an unterminated final line", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		go func() {
			io.WriteString(pw, "DevTools listening on ws://127.0.0.1:9222/devtools/browser/partial")
			pw.Close()
		}()

		url, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/partial", url)
	})

	t.Run("should still fail when the unterminated final line is noise", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		go func() {
			io.WriteString(pw, "fontconfig warning")
			pw.Close()
		}()

		_, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureIO, launchErr.Failure)
		assert.Contains(t, string(launchErr.Stderr), "fontconfig warning")
	})

	t.Run("should treat a silently closed stream as an io failure", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		pw.Close()

		_, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureIO, launchErr.Failure)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("should reject non-utf8 diagnostic output", func(t *testing.T) {
		proc, pw := newFakeLaunched(t)
		go func() {
			pw.Write([]byte{0xff, 0xfe, 0xfd, '\n'})
		}()

		_, err := ResolveWebSocketURL(proc, time.Second, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureIO, launchErr.Failure)
		assert.ErrorContains(t, launchErr, "valid UTF-8")
		pw.Close()
	})
}

func TestExtractWebSocketURL(t *testing.T) {
	t.Run("should trim whitespace around the endpoint", func(t *testing.T) {
		url, ok := extractWebSocketURL("DevTools listening on ws://127.0.0.1:9222/devtools/browser/x\r\n")
		require.True(t, ok)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/x", url)
	})

	t.Run("should require a devtools browser endpoint", func(t *testing.T) {
		_, ok := extractWebSocketURL("DevTools listening on ws://127.0.0.1:9222/other\n")
		assert.False(t, ok)

		_, ok = extractWebSocketURL("listening on http://127.0.0.1:9222/devtools/browser/x\n")
		assert.False(t, ok)
	})
}
