package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRuntimeUnavailable is returned when the container daemon cannot be reached.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable (is Docker installed and running?)")

	// ErrImageAccess is returned when the build image cannot be inspected,
	// usually because the user lacks permission to talk to the daemon.
	ErrImageAccess = errors.New("cannot access the build image")

	// ErrExec is the error class of commands failing inside the environment.
	ErrExec = errors.New("command failed in build environment")
)

// ImageAccessRemediation is shown alongside ErrImageAccess.
const ImageAccessRemediation = "add your user to the docker group: sudo usermod -aG docker $USER (then log out and back in)"

// ExecError reports a checked command that exited non-zero.
type ExecError struct {
	Args   []string
	Code   int
	Output []byte
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.Code)
}

func (e *ExecError) Unwrap() error {
	return ErrExec
}
