// internal/launcher/process_test.go
package launcher

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startProcess starts a helper command wrapped in a Process. The stderr pipe
// mirrors what Spawn sets up.
func startProcess(t *testing.T, name string, args ...string) *Process {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}

	cmd := exec.Command(name, args...)
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	cmd.Stderr = pw
	require.NoError(t, cmd.Start())
	pw.Close()

	return newProcess(cmd, pr)
}

func TestProcess(t *testing.T) {
	t.Run("should reap a fast exit exactly once", func(t *testing.T) {
		p := startProcess(t, "true")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		state, err := p.Wait(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.True(t, state.Success())

		// Every later observation sees the same reaped state.
		state2, exited := p.TryWait()
		assert.True(t, exited)
		assert.Same(t, state, state2)
	})

	t.Run("should not block TryWait on a running child", func(t *testing.T) {
		p := startProcess(t, "sleep", "30")
		defer p.Reap()

		_, exited := p.TryWait()
		assert.False(t, exited)
		assert.Positive(t, p.PID())
	})

	t.Run("should kill and reap a running child", func(t *testing.T) {
		p := startProcess(t, "sleep", "30")

		require.NoError(t, p.Reap())
		state, exited := p.TryWait()
		require.True(t, exited)
		require.NotNil(t, state)
		assert.False(t, state.Success())

		// Idempotent after exit.
		assert.NoError(t, p.Kill())
		assert.NoError(t, p.Reap())
	})

	t.Run("should cancel Wait with the context", func(t *testing.T) {
		p := startProcess(t, "sleep", "30")
		defer p.Reap()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := p.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("should close Done when the child exits", func(t *testing.T) {
		p := startProcess(t, "true")

		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("process was never reaped")
		}
		state, err := p.ExitState()
		require.NoError(t, err)
		assert.True(t, state.Exited())
	})
}
