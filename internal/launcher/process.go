// internal/launcher/process.go
package launcher

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process wraps a spawned browser process. It owns the single cmd.Wait call:
// a background goroutine reaps the child exactly once and every consumer
// observes the result through Done/ExitState, so the child can never be left
// as a zombie by competing waiters.
type Process struct {
	cmd    *exec.Cmd
	stderr io.ReadCloser

	done     chan struct{}
	waitOnce sync.Once
	state    *os.ProcessState
	waitErr  error
}

func newProcess(cmd *exec.Cmd, stderr io.ReadCloser) *Process {
	p := &Process{
		cmd:    cmd,
		stderr: stderr,
		done:   make(chan struct{}),
	}
	go p.reap()
	return p
}

func (p *Process) reap() {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		p.state = p.cmd.ProcessState
		if p.state == nil {
			p.waitErr = err
		}
		close(p.done)
	})
}

// PID returns the OS process id of the child.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Stderr returns the diagnostic stream of the child. It must be consumed by
// exactly one reader; the endpoint discovery race takes that role during
// launch.
func (p *Process) Stderr() io.ReadCloser {
	return p.stderr
}

// Done is closed once the child has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitState reports the reaped exit state. The returned error is non-nil only
// when waiting on the process itself failed at the OS level. Only valid after
// Done is closed.
func (p *Process) ExitState() (*os.ProcessState, error) {
	return p.state, p.waitErr
}

// TryWait reports the exit state if the child has already exited, without
// blocking.
func (p *Process) TryWait() (*os.ProcessState, bool) {
	select {
	case <-p.done:
		return p.state, true
	default:
		return nil, false
	}
}

// Wait blocks until the child exits or the context is cancelled.
func (p *Process) Wait(ctx context.Context) (*os.ProcessState, error) {
	select {
	case <-p.done:
		return p.state, p.waitErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Kill forcibly terminates the child. It does not wait; callers that need the
// child reaped synchronously should follow up with Wait or use Reap.
func (p *Process) Kill() error {
	if _, exited := p.TryWait(); exited {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Reap guarantees the child is no longer runnable: if it already exited this
// is a no-op, otherwise it is killed and waited on synchronously. Used on
// every failed launch path so an error never leaves an orphan behind.
func (p *Process) Reap() error {
	if _, exited := p.TryWait(); exited {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	<-p.done
	return nil
}
