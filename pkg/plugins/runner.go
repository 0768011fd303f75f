package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Cmd describes a child process to start.
type Cmd struct {
	Path   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner starts a plugin and waits for it. Signals received on signals are
// delivered to the child. The returned code is the child's exit status.
type Runner interface {
	Run(ctx context.Context, cmd Cmd, signals <-chan os.Signal) (int, error)
}

// SignalSource provides the signals to forward to a running plugin.
// The returned stop function releases the subscription.
type SignalSource interface {
	Notify() (<-chan os.Signal, func())
}

// ExitError reports a plugin that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Code)
}

// ExitCode returns the child's exit status so the parent can exit with it.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExecRunner runs plugins with os/exec.
type ExecRunner struct{}

// Run implements Runner. The child is only stopped through forwarded
// signals; ctx is not used to kill it.
func (ExecRunner) Run(_ context.Context, c Cmd, signals <-chan os.Signal) (int, error) {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig, ok := <-signals:
				if !ok {
					signals = nil
					continue
				}
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, err
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}

// OSSignals relays the process signals listed in forwardedSignals.
type OSSignals struct{}

// Notify implements SignalSource.
func (OSSignals) Notify() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, len(forwardedSignals))
	signal.Notify(ch, forwardedSignals...)
	return ch, func() { signal.Stop(ch) }
}
