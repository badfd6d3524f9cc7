package cmd

import (
	"errors"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/packager"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/target"
)

// Process exit codes.
const (
	ExitOK                  = 0
	ExitFailure             = 1
	ExitNotProject          = 2
	ExitToolNotFound        = 3
	ExitToolchainNotFound   = 4
	ExitRuntimeUnavailable  = 5
	ExitImageAccess         = 6
	ExitUnsupportedPlatform = 7
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, project.ErrNotProject):
		return ExitNotProject
	case errors.Is(err, builder.ErrToolNotFound):
		return ExitToolNotFound
	case errors.Is(err, builder.ErrToolchainNotFound), errors.Is(err, packager.ErrTemplateNotFound):
		return ExitToolchainNotFound
	case errors.Is(err, container.ErrRuntimeUnavailable):
		return ExitRuntimeUnavailable
	case errors.Is(err, container.ErrImageAccess):
		return ExitImageAccess
	case errors.Is(err, target.ErrUnsupportedPlatform):
		return ExitUnsupportedPlatform
	default:
		return ExitFailure
	}
}
