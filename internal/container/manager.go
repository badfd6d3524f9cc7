package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/config"
)

// keepAlive keeps the container running between execs.
var keepAlive = []string{"tail", "-f", "/dev/null"}

// Manager creates and replaces the named build container.
type Manager struct {
	api API
	cfg config.ContainerConfig
	log *logrus.Logger
	out io.Writer
}

// NewManager creates a manager. Output of streamed execs goes to out.
func NewManager(api API, cfg config.ContainerConfig, log *logrus.Logger, out io.Writer) *Manager {
	return &Manager{api: api, cfg: cfg, log: log, out: out}
}

// EnsureRunning makes the named container exist, running, with hostDir bound
// at the mount path. Any previous container with the same name is stopped and
// removed first so exactly one environment is ever alive. The returned
// environment is left running.
func (m *Manager) EnsureRunning(ctx context.Context, hostDir, workDir string) (*Environment, error) {
	if workDir == "" {
		workDir = m.cfg.MountPath
	}
	if !underMount(m.cfg.MountPath, workDir) {
		return nil, fmt.Errorf("working directory %s is outside the mount %s", workDir, m.cfg.MountPath)
	}

	if _, err := m.api.Ping(ctx); err != nil {
		m.log.Debugf("container: ping failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}

	if err := m.ensureImage(ctx); err != nil {
		return nil, err
	}

	if err := m.removeExisting(ctx); err != nil {
		return nil, err
	}

	cfg := &container.Config{
		Image:      m.cfg.Image,
		Cmd:        keepAlive,
		Tty:        true,
		OpenStdin:  true,
		WorkingDir: workDir,
		User:       hostUser(),
	}
	hostCfg := &container.HostConfig{
		Binds: []string{fmt.Sprintf("%s:%s:rw", hostDir, m.cfg.MountPath)},
	}

	m.log.WithFields(logrus.Fields{
		"image": m.cfg.Image,
		"name":  m.cfg.Name,
		"bind":  hostCfg.Binds[0],
	}).Debug("container: creating")

	resp, err := m.api.ContainerCreate(ctx, cfg, hostCfg, nil, nil, m.cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create container %s: %w", m.cfg.Name, err)
	}
	for _, w := range resp.Warnings {
		m.log.Warnf("container: %s", w)
	}

	if err := m.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container %s: %w", m.cfg.Name, err)
	}
	m.log.Debugf("container: started %s (%s)", m.cfg.Name, shortID(resp.ID))

	return &Environment{
		ID:          resp.ID,
		Name:        m.cfg.Name,
		MountPath:   m.cfg.MountPath,
		HostDir:     hostDir,
		WorkDir:     workDir,
		setupScript: m.cfg.SetupScript,
		user:        cfg.User,
		api:         m.api,
		log:         m.log,
		out:         m.out,
	}, nil
}

func (m *Manager) ensureImage(ctx context.Context) error {
	_, _, err := m.api.ImageInspectWithRaw(ctx, m.cfg.Image)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("%w %s: %v; %s", ErrImageAccess, m.cfg.Image, err, ImageAccessRemediation)
	}

	m.log.Infof("Pulling build image %s", m.cfg.Image)
	rc, err := m.api.ImagePull(ctx, m.cfg.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", m.cfg.Image, err)
	}
	defer rc.Close()

	w := m.log.WriterLevel(logrus.DebugLevel)
	defer w.Close()
	if err := jsonmessage.DisplayJSONMessagesStream(rc, w, 0, false, nil); err != nil {
		return fmt.Errorf("failed to pull %s: %w", m.cfg.Image, err)
	}
	return nil
}

func (m *Manager) removeExisting(ctx context.Context) error {
	existing, err := m.api.ContainerInspect(ctx, m.cfg.Name)
	if errdefs.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect container %s: %w", m.cfg.Name, err)
	}

	id := existing.ID
	m.log.Debugf("container: replacing existing %s (%s)", m.cfg.Name, shortID(id))

	timeout := m.cfg.StopAfter()
	if err := m.api.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to stop container %s: %w", m.cfg.Name, err)
	}

	waitCh, errCh := m.api.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case <-waitCh:
	case err := <-errCh:
		if err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("failed waiting for container %s: %w", m.cfg.Name, err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := m.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", m.cfg.Name, err)
	}
	return nil
}

func underMount(mount, dir string) bool {
	mount = path.Clean(mount)
	dir = path.Clean(dir)
	return dir == mount || strings.HasPrefix(dir, mount+"/")
}

// hostUser returns uid:gid so files written into the bind mount stay owned
// by the developer. Empty on windows.
func hostUser() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
