package runtime

import (
	"context"
	"time"
)

// VolumeBinding mounts an engine volume (or host path) into a container.
type VolumeBinding struct {
	// Source is the engine volume name or host path.
	Source string

	// Target is the mount path inside the container.
	Target string
}

// RunSpec describes one ephemeral container run.
type RunSpec struct {
	Image   string
	Command []string
	Binds   []VolumeBinding

	// Timeout bounds the whole run (start, execution, teardown).
	// Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Exit is how an ephemeral container run ended.
type Exit struct {
	Code int

	// Combined stdout+stderr of the container.
	// Model containers give no structured split; classifying the text
	// is up to the caller.
	Output []byte
}

// Interface is the subset of the container engine API this gateway uses.
//
// Implementations run at most one container per call; there is no
// reuse of container instances across calls.
type Interface interface {
	// PullImage pulls the image from its registry.
	PullImage(ctx context.Context, image string) error

	// ImageExists checks whether the image is in the local image store.
	ImageExists(ctx context.Context, image string) (bool, error)

	// RunContainer creates a container for spec, waits until it exits,
	// and removes it. The container is removed on every path, including
	// timeout and cancel.
	//
	// A non-zero exit code is not an error: the caller decides what an
	// exit means by looking at the artifacts the container left behind.
	RunContainer(ctx context.Context, spec RunSpec) (Exit, error)

	// CreateContainer creates (but does not start) a container, so that
	// files can be copied out of its filesystem.
	CreateContainer(ctx context.Context, image string) (id string, err error)

	// CopyFromContainer reads one file out of a created container.
	//
	// # Returns
	//
	// - []byte: file content.
	//
	// - bool: false when the path does not exist in the container.
	//
	// - error: engine-level failure.
	CopyFromContainer(ctx context.Context, id string, path string) ([]byte, bool, error)

	// RemoveContainer removes a container created by CreateContainer.
	RemoveContainer(ctx context.Context, id string) error
}
