// Package process runs external host tools from a structured argv.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command describes one external tool invocation. Args never pass through a
// shell.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands on the host.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
	Output(ctx context.Context, cmd Command) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExitError reports a command that exited non-zero.
type ExitError struct {
	Args   []string
	Dir    string
	Code   int
	Output []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.Code)
}

// Local runs commands with os/exec.
type Local struct {
	log *logrus.Logger
}

// NewLocal creates a host runner logging every invocation at debug level.
func NewLocal(log *logrus.Logger) *Local {
	return &Local{log: log}
}

// Run executes cmd, passing stdio through unless the command overrides it.
func (l *Local) Run(ctx context.Context, cmd Command) error {
	c := l.command(ctx, cmd)
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}

	return l.wrap(cmd, c.Run(), nil)
}

// Output executes cmd and returns its standard output.
func (l *Local) Output(ctx context.Context, cmd Command) ([]byte, error) {
	c := l.command(ctx, cmd)
	var stderr bytes.Buffer
	c.Stdout = nil
	if c.Stderr == nil {
		c.Stderr = &stderr
	}

	out, err := c.Output()
	return out, l.wrap(cmd, err, append(out, stderr.Bytes()...))
}

// LookPath searches PATH for name.
func (l *Local) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (l *Local) command(ctx context.Context, cmd Command) *exec.Cmd {
	l.log.WithFields(logrus.Fields{"dir": cmd.Dir}).Debugf("exec: %s", cmd)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	return c
}

func (l *Local) wrap(cmd Command, err error, output []byte) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		l.log.Debugf("exec: %s exited with code %d", cmd.Name, exitErr.ExitCode())
		return &ExitError{
			Args:   append([]string{cmd.Name}, cmd.Args...),
			Dir:    cmd.Dir,
			Code:   exitErr.ExitCode(),
			Output: output,
		}
	}
	return fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}
