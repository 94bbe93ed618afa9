package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
)

// ErrImageUnavailable: the image can neither be pulled nor found in
// the local image store.
var ErrImageUnavailable = errors.New("image is not available")

// Resolver makes sure a requested image is available locally.
type Resolver struct {
	rt runtime.Interface
}

func New(rt runtime.Interface) *Resolver {
	return &Resolver{rt: rt}
}

// Resolve attempts a remote pull of image; when the pull fails
// (registry unreachable, image never published), it falls back to the
// local image store.
//
// Built-in models are built locally and never pushed anywhere, so the
// fallback is their normal path, not an edge case.
//
// May populate the local image cache as a side effect.
func (r *Resolver) Resolve(ctx context.Context, image string) error {
	if _, err := name.NewTag(image, name.WithDefaultRegistry("")); err != nil {
		return fmt.Errorf("%w: malformed image reference %q: %s", ErrImageUnavailable, image, err)
	}

	pullErr := r.rt.PullImage(ctx, image)
	if pullErr == nil {
		return nil
	}

	found, err := r.rt.ImageExists(ctx, image)
	if err != nil {
		return fmt.Errorf("%w: pull failed (%s) and local lookup failed (%s)", ErrImageUnavailable, pullErr, err)
	}
	if !found {
		return fmt.Errorf("%w: %q is not found locally or in registry (pull: %s)", ErrImageUnavailable, image, pullErr)
	}
	return nil
}
