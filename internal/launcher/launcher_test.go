// internal/launcher/launcher_test.go
package launcher

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBrowser writes a shell script that behaves like a browser binary for
// launch purposes: optionally announces an endpoint on stderr, then idles or
// exits per the body.
func fakeBrowser(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-chrome")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// readPID parses the PID the fake browser script wrote on startup.
func readPID(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return pid
}

// requireDead asserts the process no longer exists (it has been killed and
// reaped, not merely signalled).
func requireDead(t *testing.T, pid int) {
	t.Helper()
	err := syscall.Kill(pid, 0)
	require.ErrorIs(t, err, syscall.ESRCH, "process %d still exists after failed launch", pid)
}

func TestLaunch(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}

	t.Run("should resolve the endpoint of a healthy launch", func(t *testing.T) {
		exe := fakeBrowser(t,
			"echo 'DevTools listening on ws://127.0.0.1:9222/devtools/browser/launch-test' >&2\nsleep 30\n")
		cfg := Config{Executable: exe, Headless: Headful, Sandbox: true, LaunchTimeout: 5 * time.Second}

		proc, wsURL, err := Launch(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		defer proc.Reap()

		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/launch-test", wsURL)
		_, exited := proc.TryWait()
		assert.False(t, exited)
	})

	t.Run("should reap a browser that crashes on startup", func(t *testing.T) {
		pidFile := filepath.Join(t.TempDir(), "pid")
		exe := fakeBrowser(t,
			"echo $$ > "+pidFile+"\necho 'Fatal: cannot open display' >&2\nexit 1\n")
		cfg := Config{Executable: exe, Headless: Headful, Sandbox: true, LaunchTimeout: 5 * time.Second}

		_, _, err := Launch(cfg, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Contains(t, string(launchErr.Stderr), "cannot open display")
		requireDead(t, readPID(t, pidFile))
	})

	t.Run("should reap a browser that never announces", func(t *testing.T) {
		pidFile := filepath.Join(t.TempDir(), "pid")
		exe := fakeBrowser(t, "echo $$ > "+pidFile+"\nsleep 30\n")
		cfg := Config{Executable: exe, Headless: Headful, Sandbox: true, LaunchTimeout: 100 * time.Millisecond}

		start := time.Now()
		_, _, err := Launch(cfg, zaptest.NewLogger(t))

		var launchErr *LaunchError
		require.ErrorAs(t, err, &launchErr)
		assert.Equal(t, FailureTimeout, launchErr.Failure)
		// The child is killed, not waited out.
		assert.Less(t, time.Since(start), 10*time.Second)
		requireDead(t, readPID(t, pidFile))
	})

	t.Run("should fail fast on a missing executable", func(t *testing.T) {
		cfg := Config{
			Executable:    filepath.Join(t.TempDir(), "missing"),
			Headless:      Headful,
			Sandbox:       true,
			LaunchTimeout: time.Second,
		}
		_, _, err := Launch(cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}
