package mock

import (
	"context"
	"errors"

	"github.com/twinsights/modelgw/pkg/domain/model"
)

type CallLog[T any] []T

func (c CallLog[T]) Times() int {
	return len(c)
}

type Registry struct {
	Impl struct {
		Ping   func(context.Context) error
		Upsert func(context.Context, model.RegisteredModel) error
		Find   func(context.Context, string) (model.RegisteredModel, bool, error)
		List   func(context.Context) ([]model.RegisteredModel, error)
		Count  func(context.Context) (int, error)
	}
	Calls struct {
		Ping   CallLog[struct{}]
		Upsert CallLog[model.RegisteredModel]
		Find   CallLog[struct{ Image string }]
		List   CallLog[struct{}]
		Count  CallLog[struct{}]
	}
}

func NewRegistry() *Registry {
	return &Registry{}
}

var _ model.Registry = &Registry{}

func (r *Registry) Ping(ctx context.Context) error {
	r.Calls.Ping = append(r.Calls.Ping, struct{}{})
	if r.Impl.Ping != nil {
		return r.Impl.Ping(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (r *Registry) Upsert(ctx context.Context, m model.RegisteredModel) error {
	r.Calls.Upsert = append(r.Calls.Upsert, m)
	if r.Impl.Upsert != nil {
		return r.Impl.Upsert(ctx, m)
	}
	panic(errors.New("it should not be called"))
}

func (r *Registry) Find(ctx context.Context, image string) (model.RegisteredModel, bool, error) {
	r.Calls.Find = append(r.Calls.Find, struct{ Image string }{Image: image})
	if r.Impl.Find != nil {
		return r.Impl.Find(ctx, image)
	}
	panic(errors.New("it should not be called"))
}

func (r *Registry) List(ctx context.Context) ([]model.RegisteredModel, error) {
	r.Calls.List = append(r.Calls.List, struct{}{})
	if r.Impl.List != nil {
		return r.Impl.List(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	r.Calls.Count = append(r.Calls.Count, struct{}{})
	if r.Impl.Count != nil {
		return r.Impl.Count(ctx)
	}
	panic(errors.New("it should not be called"))
}
