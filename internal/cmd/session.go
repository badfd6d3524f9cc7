package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/ui"
)

// session is the resolved state of one project-scoped invocation.
type session struct {
	proj   *project.Project
	cfg    config.Config
	log    *logrus.Logger
	out    *ui.Printer
	runner process.Runner
	env    container.Provider
}

// openProject resolves the project before anything else so commands fail
// with ErrNotProject without touching any tool or the container runtime.
func (a *App) openProject() (*session, error) {
	dir := a.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	proj, err := project.Open(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(proj.Root, config.Overrides{ConfigFile: a.configFile, Verbose: a.verbose, Jobs: a.jobs})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := a.newSession(cfg)
	s.proj = proj
	return s, nil
}

func (a *App) newSession(cfg config.Config) *session {
	log := ui.NewLogger(cfg.Verbose, a.Err)

	runner := a.Runner
	if runner == nil {
		runner = process.NewLocal(log)
	}

	s := &session{
		cfg:    cfg,
		log:    log,
		out:    ui.NewPrinter(a.Out),
		runner: runner,
	}
	if a.Containers != nil {
		s.env = reuse(a.Containers(cfg, log, a.Out))
	}
	return s
}

func (s *session) builder() *builder.Builder {
	return builder.New(s.runner, s.env, s.cfg, s.log)
}

// reuse starts the environment on first use and hands the same one to every
// later console step of the invocation.
func reuse(p container.Provider) container.Provider {
	var (
		mu  sync.Mutex
		env container.Executor
	)
	return func(ctx context.Context, hostDir, workDir string) (container.Executor, error) {
		mu.Lock()
		defer mu.Unlock()
		if env != nil {
			return env, nil
		}
		e, err := p(ctx, hostDir, workDir)
		if err != nil {
			return nil, err
		}
		env = e
		return env, nil
	}
}
