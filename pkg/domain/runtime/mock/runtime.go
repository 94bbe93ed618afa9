package mock

import (
	"context"
	"errors"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
)

type CallLog[T any] []T

func (c CallLog[T]) Times() int {
	return len(c)
}

type Runtime struct {
	Impl struct {
		PullImage         func(context.Context, string) error
		ImageExists       func(context.Context, string) (bool, error)
		RunContainer      func(context.Context, runtime.RunSpec) (runtime.Exit, error)
		CreateContainer   func(context.Context, string) (string, error)
		CopyFromContainer func(context.Context, string, string) ([]byte, bool, error)
		RemoveContainer   func(context.Context, string) error
	}
	Calls struct {
		PullImage         CallLog[struct{ Image string }]
		ImageExists       CallLog[struct{ Image string }]
		RunContainer      CallLog[runtime.RunSpec]
		CreateContainer   CallLog[struct{ Image string }]
		CopyFromContainer CallLog[struct{ Id, Path string }]
		RemoveContainer   CallLog[struct{ Id string }]
	}
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

var _ runtime.Interface = &Runtime{}

func (r *Runtime) PullImage(ctx context.Context, image string) error {
	r.Calls.PullImage = append(r.Calls.PullImage, struct{ Image string }{Image: image})
	if r.Impl.PullImage != nil {
		return r.Impl.PullImage(ctx, image)
	}
	panic(errors.New("it should not be called"))
}

func (r *Runtime) ImageExists(ctx context.Context, image string) (bool, error) {
	r.Calls.ImageExists = append(r.Calls.ImageExists, struct{ Image string }{Image: image})
	if r.Impl.ImageExists != nil {
		return r.Impl.ImageExists(ctx, image)
	}
	panic(errors.New("it should not be called"))
}

func (r *Runtime) RunContainer(ctx context.Context, spec runtime.RunSpec) (runtime.Exit, error) {
	r.Calls.RunContainer = append(r.Calls.RunContainer, spec)
	if r.Impl.RunContainer != nil {
		return r.Impl.RunContainer(ctx, spec)
	}
	panic(errors.New("it should not be called"))
}

func (r *Runtime) CreateContainer(ctx context.Context, image string) (string, error) {
	r.Calls.CreateContainer = append(r.Calls.CreateContainer, struct{ Image string }{Image: image})
	if r.Impl.CreateContainer != nil {
		return r.Impl.CreateContainer(ctx, image)
	}
	panic(errors.New("it should not be called"))
}

func (r *Runtime) CopyFromContainer(ctx context.Context, id string, path string) ([]byte, bool, error) {
	r.Calls.CopyFromContainer = append(r.Calls.CopyFromContainer, struct{ Id, Path string }{Id: id, Path: path})
	if r.Impl.CopyFromContainer != nil {
		return r.Impl.CopyFromContainer(ctx, id, path)
	}
	panic(errors.New("it should not be called"))
}

func (r *Runtime) RemoveContainer(ctx context.Context, id string) error {
	r.Calls.RemoveContainer = append(r.Calls.RemoveContainer, struct{ Id string }{Id: id})
	if r.Impl.RemoveContainer != nil {
		return r.Impl.RemoveContainer(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
