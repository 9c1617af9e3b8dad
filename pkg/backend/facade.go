package backend

import (
	"bufio"
	"burrow/pkg/common"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// tailLines bounds how much trailing backend output is folded into an
// error message.
const tailLines = 8

// killGrace is how long a cancelled child gets to exit after SIGTERM
// before it is killed outright.
const killGrace = 5 * time.Second

// Immutable
type facade struct {
	command string
}

func (f *facade) Register(ctx context.Context, identity, installPath, artifactPath, versionHint string) error {
	slog.Info("Registering sandbox", "identity", identity, "install", installPath)

	tail, err := f.runCaptured(ctx, "register", identity, installPath, artifactPath, versionHint)
	if err != nil {
		if ctx.Err() != nil {
			return common.CancelledFault("registration")
		}
		return common.Faultf(common.FaultRegistrationFailed,
			"backend refused to register %s: %v%s", identity, err, tail)
	}
	return nil
}

func (f *facade) Execute(ctx context.Context, identity string, command []string) error {
	args := append([]string{"run", identity, "--"}, command...)
	cmd := exec.CommandContext(ctx, f.command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	gracefulCancel(cmd)

	slog.Info("Executing in sandbox", "identity", identity, "command", command)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return common.CancelledFault("execution")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return common.Faultf(common.FaultExecutionFailed,
				"sandboxed command exited with status %d", exitErr.ExitCode())
		}
		return common.Faultf(common.FaultExecutionFailed,
			"cannot start sandboxed command: %v", err)
	}
	return nil
}

// Release deliberately builds its command without a context: teardown is
// not cancellable and runs to natural completion even while the rest of
// the process is shutting down.
func (f *facade) Release(identity string) error {
	slog.Info("Releasing sandbox", "identity", identity)

	cmd := exec.Command(f.command, "unregister", identity)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("backend unregister %s: %v%s", identity, err, tailOf(splitLines(string(out))))
	}
	return nil
}

// runCaptured executes a backend invocation, draining stdout and stderr
// concurrently: every line is logged at debug level as it arrives, and the
// last few lines come back for error messages.
func (f *facade) runCaptured(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, f.command, args...)
	gracefulCancel(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}

	var mu sync.Mutex
	var tail []string
	collect := func(r io.Reader, stream string) func() error {
		return func() error {
			sc := bufio.NewScanner(r)
			for sc.Scan() {
				line := sc.Text()
				slog.Debug("Backend output", "stream", stream, "line", line)
				mu.Lock()
				tail = append(tail, line)
				if len(tail) > tailLines {
					tail = tail[1:]
				}
				mu.Unlock()
			}
			return sc.Err()
		}
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("cannot start %s: %w", f.command, err)
	}

	g := new(errgroup.Group)
	g.Go(collect(stdout, "stdout"))
	g.Go(collect(stderr, "stderr"))

	// Streams must be fully drained before Wait releases their pipes.
	streamErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		return tailOf(tail), waitErr
	}
	return tailOf(tail), streamErr
}

// gracefulCancel makes context cancellation deliver SIGTERM instead of the
// default kill, giving the backend a chance to unwind mounts, with a hard
// kill after the grace period.
func gracefulCancel(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace
}

func splitLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}

func tailOf(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return ": " + strings.Join(lines, " / ")
}
