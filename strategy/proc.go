package strategy

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a Strategy Engine running as a child process, its stdin/stdout
// wired into a Channel. The engine is started once at bot startup and is
// not restarted if it exits; a dead engine simply stops answering and
// every cycle falls through the decision deadline.
type Process struct {
	*Channel
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// Launch starts the strategy binary and connects its pipes. The child's
// stderr passes through to the bot's so engine diagnostics stay visible.
func Launch(command string, args ...string) (*Process, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start strategy engine: %w", err)
	}

	return &Process{
		Channel: NewChannel(stdout, stdin),
		cmd:     cmd,
		stdin:   stdin,
	}, nil
}

// Stop closes the engine's stdin (the conventional shutdown signal for a
// line-protocol child) and waits for it to exit.
func (p *Process) Stop() error {
	p.stdin.Close()
	return p.cmd.Wait()
}
