package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	docker "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// how long teardown of a timed-out container may take.
const removeGrace = 30 * time.Second

// A wrapper for *docker.Client; the rest of the gateway should not
// know the engine SDK.
type dockerRuntime struct {
	client *docker.Client
}

var _ runtime.Interface = &dockerRuntime{}

// Connect dials the container engine using the usual DOCKER_HOST /
// DOCKER_API_VERSION environment, negotiating the API version.
func Connect() (runtime.Interface, error) {
	c, err := docker.NewClientWithOpts(docker.FromEnv, docker.WithAPIVersionNegotiation())
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return &dockerRuntime{client: c}, nil
}

func (d *dockerRuntime) PullImage(ctx context.Context, image string) error {
	rc, err := d.client.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return xe.Wrap(err)
	}
	defer rc.Close()

	// the pull happens while the response body is consumed.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (d *dockerRuntime) ImageExists(ctx context.Context, image string) (bool, error) {
	_, _, err := d.client.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return true, nil
	}
	if docker.IsErrNotFound(err) {
		return false, nil
	}
	return false, xe.Wrap(err)
}

func (d *dockerRuntime) RunContainer(ctx context.Context, spec runtime.RunSpec) (runtime.Exit, error) {
	rctx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	binds := make([]string, 0, len(spec.Binds))
	for _, b := range spec.Binds {
		binds = append(binds, fmt.Sprintf("%s:%s:rw", b.Source, b.Target))
	}

	created, err := d.client.ContainerCreate(
		rctx,
		&container.Config{Image: spec.Image, Cmd: spec.Command},
		&container.HostConfig{Binds: binds},
		nil, nil, "",
	)
	if err != nil {
		return runtime.Exit{}, xe.Wrap(err)
	}
	defer func() {
		// removal must happen even when rctx has expired.
		dctx, cancel := context.WithTimeout(context.Background(), removeGrace)
		defer cancel()
		d.client.ContainerRemove(dctx, created.ID, types.ContainerRemoveOptions{Force: true})
	}()

	if err := d.client.ContainerStart(rctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return runtime.Exit{}, xe.Wrap(err)
	}

	var code int
	waitCh, errCh := d.client.ContainerWait(rctx, created.ID, container.WaitConditionNotRunning)
	select {
	case w := <-waitCh:
		if w.Error != nil {
			return runtime.Exit{}, xe.New(w.Error.Message)
		}
		code = int(w.StatusCode)
	case err := <-errCh:
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return runtime.Exit{}, xe.WrapWithNote(
				fmt.Sprintf("container did not exit in %s", spec.Timeout), err,
			)
		}
		return runtime.Exit{}, xe.Wrap(err)
	}

	// logs are read with the outer ctx: the run itself is over.
	logs, err := d.client.ContainerLogs(ctx, created.ID, types.ContainerLogsOptions{
		ShowStdout: true, ShowStderr: true,
	})
	if err != nil {
		return runtime.Exit{}, xe.Wrap(err)
	}
	defer logs.Close()

	combined := new(bytes.Buffer)
	if _, err := stdcopy.StdCopy(combined, combined, logs); err != nil {
		return runtime.Exit{}, xe.Wrap(err)
	}

	return runtime.Exit{Code: code, Output: combined.Bytes()}, nil
}

func (d *dockerRuntime) CreateContainer(ctx context.Context, image string) (string, error) {
	created, err := d.client.ContainerCreate(
		ctx, &container.Config{Image: image}, nil, nil, nil, "",
	)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return created.ID, nil
}

func (d *dockerRuntime) CopyFromContainer(ctx context.Context, id string, path string) ([]byte, bool, error) {
	rc, _, err := d.client.CopyFromContainer(ctx, id, path)
	if err != nil {
		if docker.IsErrNotFound(err) {
			return nil, false, nil
		}
		return nil, false, xe.Wrap(err)
	}
	defer rc.Close()

	content, err := readFileFromTar(rc)
	if err != nil {
		return nil, false, xe.Wrap(err)
	}
	return content, true, nil
}

func (d *dockerRuntime) RemoveContainer(ctx context.Context, id string) error {
	if err := d.client.ContainerRemove(ctx, id, types.ContainerRemoveOptions{Force: true}); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// readFileFromTar returns the content of the first regular file
// in the stream. The engine sends single-file copies as a tar
// archive holding just that file.
func readFileFromTar(stream io.Reader) ([]byte, error) {
	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		return io.ReadAll(tr)
	}
	return nil, errors.New("no regular file in copied archive")
}
