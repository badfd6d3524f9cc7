// Package containertest provides an in-memory container.Executor for tests.
package containertest

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/simulant-engine/simulant-tools/internal/container"
)

// Executor records requests and maps paths like a real bind mount.
type Executor struct {
	HostDir   string
	MountPath string

	// Hook, when set, decides the result of each request.
	Hook func(req container.ExecRequest) (container.ExecResult, error)

	mu       sync.Mutex
	Requests []container.ExecRequest
}

// New returns an executor mounting hostDir at /simulant.
func New(hostDir string) *Executor {
	return &Executor{HostDir: hostDir, MountPath: "/simulant"}
}

func (e *Executor) Exec(ctx context.Context, req container.ExecRequest) (container.ExecResult, error) {
	e.mu.Lock()
	e.Requests = append(e.Requests, req)
	hook := e.Hook
	e.mu.Unlock()

	if hook == nil {
		return container.ExecResult{}, nil
	}
	res, err := hook(req)
	if err == nil && req.Check && res.Code != 0 {
		err = &container.ExecError{Args: req.Args, Code: res.Code, Output: res.Output}
	}
	return res, err
}

func (e *Executor) Path(hostPath string) (string, error) {
	rel, err := filepath.Rel(e.HostDir, hostPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", hostPath, e.HostDir)
	}
	return path.Join(e.MountPath, filepath.ToSlash(rel)), nil
}

// HostPath maps an in-container path back to the host.
func (e *Executor) HostPath(p string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(p, e.MountPath), "/")
	return filepath.Join(e.HostDir, filepath.FromSlash(rel))
}

// Commands returns the argv of every request.
func (e *Executor) Commands() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.Requests))
	for i, r := range e.Requests {
		out[i] = r.Args
	}
	return out
}

// Provider returns a container.Provider handing out e, counting starts in
// *starts when non-nil.
func (e *Executor) Provider(starts *int) container.Provider {
	return func(ctx context.Context, hostDir, workDir string) (container.Executor, error) {
		if starts != nil {
			*starts++
		}
		return e, nil
	}
}
