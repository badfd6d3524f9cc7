package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/sirupsen/logrus"
)

// execScript sources the setup script ($1) and then execs the remaining
// positional parameters verbatim.
const execScript = `source "$1" && shift && exec "$@"`

// execPlain is used when no setup script is configured.
const execPlain = `exec "$@"`

// Environment is a running build container.
type Environment struct {
	ID        string
	Name      string
	MountPath string
	HostDir   string
	WorkDir   string

	setupScript string
	user        string
	api         API
	log         *logrus.Logger
	out         io.Writer
}

// ExecRequest is one command to run inside the environment.
type ExecRequest struct {
	Args []string
	// Dir is the in-container working directory. Defaults to WorkDir.
	Dir string
	// Check turns a non-zero exit into an *ExecError.
	Check bool
	// Stream copies output to the terminal as it arrives.
	Stream bool
}

// ExecResult is the outcome of a command.
type ExecResult struct {
	Code   int
	Output []byte
}

// Exec runs req inside the environment with the toolchain environment loaded.
func (e *Environment) Exec(ctx context.Context, req ExecRequest) (ExecResult, error) {
	if len(req.Args) == 0 {
		return ExecResult{}, fmt.Errorf("empty command")
	}
	dir := req.Dir
	if dir == "" {
		dir = e.WorkDir
	}

	e.log.WithFields(logrus.Fields{"container": e.Name, "dir": dir}).
		Debugf("exec: %s", strings.Join(req.Args, " "))

	created, err := e.api.ContainerExecCreate(ctx, e.ID, container.ExecOptions{
		User:         e.user,
		WorkingDir:   dir,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          e.command(req.Args),
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to create exec in %s: %w", e.Name, err)
	}

	hijacked, err := e.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to attach to exec in %s: %w", e.Name, err)
	}
	defer hijacked.Close()

	var captured bytes.Buffer
	stdout, stderr := io.Writer(&captured), io.Writer(&captured)
	if req.Stream && e.out != nil {
		stdout = io.MultiWriter(&captured, e.out)
		stderr = io.MultiWriter(&captured, e.out)
	}
	if _, err := stdcopy.StdCopy(stdout, stderr, hijacked.Reader); err != nil {
		return ExecResult{}, fmt.Errorf("failed to read exec output: %w", err)
	}

	code, err := e.exitCode(ctx, created.ID)
	if err != nil {
		return ExecResult{}, err
	}

	result := ExecResult{Code: code, Output: captured.Bytes()}
	if code != 0 {
		e.log.Debugf("exec: %s exited with code %d", req.Args[0], code)
		if req.Check {
			return result, &ExecError{Args: req.Args, Code: code, Output: result.Output}
		}
	}
	return result, nil
}

func (e *Environment) command(args []string) []string {
	if e.setupScript == "" {
		return append([]string{"/bin/bash", "-c", execPlain, "simulant"}, args...)
	}
	return append([]string{"/bin/bash", "-c", execScript, "simulant", e.setupScript}, args...)
}

func (e *Environment) exitCode(ctx context.Context, execID string) (int, error) {
	for {
		inspect, err := e.api.ContainerExecInspect(ctx, execID)
		if err != nil {
			return 0, fmt.Errorf("failed to inspect exec: %w", err)
		}
		if !inspect.Running {
			return inspect.ExitCode, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Path translates a host path beneath HostDir to its in-container location.
func (e *Environment) Path(hostPath string) (string, error) {
	rel, err := filepath.Rel(e.HostDir, hostPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside the mounted directory %s", hostPath, e.HostDir)
	}
	return path.Join(e.MountPath, filepath.ToSlash(rel)), nil
}

// Executor is what pipelines need from an environment: running commands and
// mapping host paths. *Environment implements it.
type Executor interface {
	Exec(ctx context.Context, req ExecRequest) (ExecResult, error)
	Path(hostPath string) (string, error)
}

// Provider starts (or replaces) the build environment for hostDir.
type Provider func(ctx context.Context, hostDir, workDir string) (Executor, error)

// Provider returns m.EnsureRunning as a Provider.
func (m *Manager) Provider() Provider {
	return func(ctx context.Context, hostDir, workDir string) (Executor, error) {
		env, err := m.EnsureRunning(ctx, hostDir, workDir)
		if err != nil {
			return nil, err
		}
		return env, nil
	}
}
