package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/model"
)

// ErrModelNotRegistered: predict was asked for an image nobody
// registered. No container is run in that case.
var ErrModelNotRegistered = errors.New("model is not registered")

// Executor runs the model container.
type Executor interface {
	Run(ctx context.Context, image string, input any, timeout time.Duration) (execute.Result, error)
}

// Service serves live prediction requests.
type Service struct {
	registry model.Registry
	executor Executor
	timeout  time.Duration
}

func New(registry model.Registry, executor Executor, timeout time.Duration) *Service {
	return &Service{registry: registry, executor: executor, timeout: timeout}
}

// Predict checks the image is registered, then executes it once
// against input.
func (s *Service) Predict(ctx context.Context, image string, input any) (execute.Result, error) {
	_, found, err := s.registry.Find(ctx, image)
	if err != nil {
		return execute.Result{}, err
	}
	if !found {
		return execute.Result{}, fmt.Errorf("%w: %q", ErrModelNotRegistered, image)
	}

	return s.executor.Run(ctx, image, input, s.timeout)
}
