// Package privilege checks whether the process may open raw sockets and,
// when it may not, re-runs the current command through sudo.
package privilege

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	apperrors "github.com/anstrom/hostsweep/internal/errors"
)

// Status is the outcome of a privilege check.
type Status int

const (
	// Unknown means the invoking identity could not be determined.
	Unknown Status = iota
	// Unprivileged means the process runs as a regular user.
	Unprivileged
	// Privileged means the process runs as root.
	Privileged
)

func (s Status) String() string {
	switch s {
	case Privileged:
		return "privileged"
	case Unprivileged:
		return "unprivileged"
	default:
		return "unknown"
	}
}

// Check inspects the USER identity and the effective uid of the process.
func Check() Status {
	return check(os.Getenv("USER"), os.Geteuid())
}

// check decides from a user name and an effective uid. A negative euid means
// the platform does not report one.
func check(user string, euid int) Status {
	switch {
	case euid == 0:
		return Privileged
	case user == "":
		return Unknown
	case euid < 0 && user == "root":
		return Privileged
	default:
		return Unprivileged
	}
}

// Escalator re-executes the running binary through sudo.
type Escalator struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	lookPath   func(file string) (string, error)
	executable func() (string, error)
	command    func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewEscalator returns an Escalator wired to the process's standard streams.
func NewEscalator() *Escalator {
	return &Escalator{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		lookPath:   exec.LookPath,
		executable: os.Executable,
		command:    exec.CommandContext,
	}
}

// Escalate runs "sudo <this binary> args..." and waits for it. It returns
// the exit code the parent should terminate with: the child's code when the
// child failed, 1 when it succeeded. A PERMISSION error is returned when
// sudo or the binary cannot be found or the child cannot be started.
func (e *Escalator) Escalate(ctx context.Context, args []string) (int, error) {
	sudo, err := e.lookPath("sudo")
	if err != nil {
		return apperrors.ExitPermission, apperrors.ErrPermission("privilege escalation unavailable: sudo not found", err)
	}
	self, err := e.executable()
	if err != nil {
		return apperrors.ExitPermission, apperrors.ErrPermission("cannot locate running executable", err)
	}

	cmd := e.command(ctx, sudo, append([]string{self}, args...)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return apperrors.ExitPermission, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() > 0:
		return exitErr.ExitCode(), nil
	default:
		return apperrors.ExitPermission, apperrors.ErrPermission("privilege escalation failed", err)
	}
}
