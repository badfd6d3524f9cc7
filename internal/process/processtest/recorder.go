// Package processtest provides a recording process.Runner for tests.
package processtest

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/simulant-engine/simulant-tools/internal/process"
)

// Recorder records every command instead of running it.
type Recorder struct {
	mu sync.Mutex

	// Calls holds each command as argv (name first).
	Calls [][]string
	// Dirs holds the working directory of each call.
	Dirs []string
	// Tools lists the names LookPath resolves. Nil resolves everything.
	Tools []string
	// Hook, when set, runs for each command and may fail it.
	Hook func(cmd process.Command) error
	// Stdout is returned by Output.
	Stdout []byte
	// Lookups holds every name passed to LookPath.
	Lookups []string
}

func (r *Recorder) record(ctx context.Context, cmd process.Command) error {
	r.mu.Lock()
	r.Calls = append(r.Calls, append([]string{cmd.Name}, cmd.Args...))
	r.Dirs = append(r.Dirs, cmd.Dir)
	hook := r.Hook
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if hook != nil {
		return hook(cmd)
	}
	return nil
}

func (r *Recorder) Run(ctx context.Context, cmd process.Command) error {
	return r.record(ctx, cmd)
}

func (r *Recorder) Output(ctx context.Context, cmd process.Command) ([]byte, error) {
	if err := r.record(ctx, cmd); err != nil {
		return nil, err
	}
	return r.Stdout, nil
}

func (r *Recorder) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups = append(r.Lookups, name)

	if r.Tools == nil {
		return "/usr/bin/" + name, nil
	}
	for _, t := range r.Tools {
		if t == name {
			return "/usr/bin/" + name, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// Touched reports whether any command ran or any tool was looked up.
func (r *Recorder) Touched() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls) > 0 || len(r.Lookups) > 0
}
