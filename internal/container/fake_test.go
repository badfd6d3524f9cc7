package container

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeExec struct {
	options container.ExecOptions
	output  string
	code    int
}

// fakeAPI is an in-memory daemon holding containers by name.
type fakeAPI struct {
	mu sync.Mutex

	pingErr    error
	inspectErr error
	images     map[string]bool
	containers map[string]string // name -> id
	running    map[string]bool   // id -> running

	execs    map[string]*fakeExec
	lastExec string
	nextID   int
	calls    []string
	pulled   []string
	created  []*container.Config
	hosts    []*container.HostConfig
	stops    []*int

	// execResult decides output and exit code for each exec command.
	execResult func(cmd []string) (string, int)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		images:     map[string]bool{},
		containers: map[string]string{},
		running:    map[string]bool{},
		execs:      map[string]*fakeExec{},
	}
}

func (f *fakeAPI) call(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%04d", prefix, f.nextID)
}

func (f *fakeAPI) Ping(ctx context.Context) (types.Ping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("Ping")
	return types.Ping{}, f.pingErr
}

func (f *fakeAPI) ImageInspectWithRaw(ctx context.Context, ref string) (types.ImageInspect, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ImageInspect")
	if f.inspectErr != nil {
		return types.ImageInspect{}, nil, f.inspectErr
	}
	if !f.images[ref] {
		return types.ImageInspect{}, nil, errdefs.NotFound(fmt.Errorf("No such image: %s", ref))
	}
	return types.ImageInspect{ID: "sha256:" + ref}, nil, nil
}

func (f *fakeAPI) ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ImagePull")
	f.pulled = append(f.pulled, ref)
	f.images[ref] = true
	return io.NopCloser(strings.NewReader(`{"status":"Pulling from kazade/dreamcast-sdk"}` + "\n")), nil
}

func (f *fakeAPI) lookup(nameOrID string) (string, bool) {
	if id, ok := f.containers[nameOrID]; ok {
		return id, true
	}
	for _, id := range f.containers {
		if id == nameOrID {
			return id, true
		}
	}
	return "", false
}

func (f *fakeAPI) ContainerInspect(ctx context.Context, nameOrID string) (types.ContainerJSON, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerInspect")
	id, ok := f.lookup(nameOrID)
	if !ok {
		return types.ContainerJSON{}, errdefs.NotFound(fmt.Errorf("No such container: %s", nameOrID))
	}
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:    id,
			Name:  "/" + nameOrID,
			State: &types.ContainerState{Running: f.running[id]},
		},
	}, nil
}

func (f *fakeAPI) ContainerStop(ctx context.Context, id string, options container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerStop")
	f.stops = append(f.stops, options.Timeout)
	if _, ok := f.lookup(id); !ok {
		return errdefs.NotFound(errors.New("gone"))
	}
	f.running[id] = false
	return nil
}

func (f *fakeAPI) ContainerWait(ctx context.Context, id string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerWait")
	ch := make(chan container.WaitResponse, 1)
	ch <- container.WaitResponse{StatusCode: 0}
	return ch, make(chan error)
}

func (f *fakeAPI) ContainerRemove(ctx context.Context, id string, options container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerRemove")
	for name, cid := range f.containers {
		if cid == id {
			delete(f.containers, name)
			delete(f.running, id)
			return nil
		}
	}
	return errdefs.NotFound(errors.New("gone"))
}

func (f *fakeAPI) ContainerCreate(ctx context.Context, cfg *container.Config, host *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerCreate")
	if _, exists := f.containers[name]; exists {
		return container.CreateResponse{}, errdefs.Conflict(fmt.Errorf("name %s already in use", name))
	}
	id := f.id("c")
	f.containers[name] = id
	f.created = append(f.created, cfg)
	f.hosts = append(f.hosts, host)
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeAPI) ContainerStart(ctx context.Context, id string, options container.StartOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ContainerStart")
	f.running[id] = true
	return nil
}

func (f *fakeAPI) ContainerExecCreate(ctx context.Context, id string, options container.ExecOptions) (types.IDResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ExecCreate")
	if !f.running[id] {
		return types.IDResponse{}, errdefs.Conflict(fmt.Errorf("container %s is not running", id))
	}
	out, code := "", 0
	if f.execResult != nil {
		out, code = f.execResult(options.Cmd)
	}
	execID := f.id("e")
	f.execs[execID] = &fakeExec{options: options, output: out, code: code}
	f.lastExec = execID
	return types.IDResponse{ID: execID}, nil
}

func (f *fakeAPI) ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ExecAttach")

	var framed bytes.Buffer
	if out := f.execs[execID].output; out != "" {
		if _, err := stdcopy.NewStdWriter(&framed, stdcopy.Stdout).Write([]byte(out)); err != nil {
			return types.HijackedResponse{}, err
		}
	}
	conn, peer := net.Pipe()
	peer.Close()
	return types.HijackedResponse{Conn: conn, Reader: bufio.NewReader(&framed)}, nil
}

func (f *fakeAPI) ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("ExecInspect")
	return container.ExecInspect{ExecID: execID, ExitCode: f.execs[execID].code}, nil
}

func (f *fakeAPI) latestExec() *fakeExec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.execs[f.lastExec]
}
