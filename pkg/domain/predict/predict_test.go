package predict_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/model"
	mockdb "github.com/twinsights/modelgw/pkg/domain/model/mock"
	"github.com/twinsights/modelgw/pkg/domain/predict"
	"github.com/twinsights/modelgw/pkg/utils/try"
)

type executorCall struct {
	Image   string
	Input   any
	Timeout time.Duration
}

type fakeExecutor struct {
	result execute.Result
	err    error
	calls  []executorCall
}

func (f *fakeExecutor) Run(_ context.Context, image string, input any, timeout time.Duration) (execute.Result, error) {
	f.calls = append(f.calls, executorCall{Image: image, Input: input, Timeout: timeout})
	return f.result, f.err
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("when the model is registered, it should execute it with the request input", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Find = func(_ context.Context, image string) (model.RegisteredModel, bool, error) {
			return model.RegisteredModel{Image: image}, true, nil
		}
		executor := &fakeExecutor{result: execute.Result{
			Predictions: []any{0.2, 0.8},
			Stderr:      "Model loaded",
		}}

		testee := predict.New(registry, executor, 42*time.Second)
		result := try.To(testee.Predict(ctx, "example.repo/churn:v1", map[string]any{"age": 41})).OrFatal(t)

		if result.Predictions == nil {
			t.Error("the execution result should be passed through")
		}
		if len(executor.calls) != 1 {
			t.Fatalf("the model should run once, but %d times", len(executor.calls))
		}
		if call := executor.calls[0]; call.Image != "example.repo/churn:v1" || call.Timeout != 42*time.Second {
			t.Errorf("unexpected execution: %+v", call)
		}
	})

	t.Run("when the model is not registered, it should fail without running anything", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Find = func(context.Context, string) (model.RegisteredModel, bool, error) {
			return model.RegisteredModel{}, false, nil
		}
		executor := &fakeExecutor{}

		testee := predict.New(registry, executor, 42*time.Second)
		if _, err := testee.Predict(ctx, "no-such-model:v1", nil); !errors.Is(err, predict.ErrModelNotRegistered) {
			t.Errorf("expected ErrModelNotRegistered, got %v", err)
		}

		if len(executor.calls) != 0 {
			t.Error("no container should run for an unregistered model")
		}
	})

	t.Run("when the lookup fails, it should report the error", func(t *testing.T) {
		fakeErr := errors.New("fake db error")
		registry := mockdb.NewRegistry()
		registry.Impl.Find = func(context.Context, string) (model.RegisteredModel, bool, error) {
			return model.RegisteredModel{}, false, fakeErr
		}
		executor := &fakeExecutor{}

		testee := predict.New(registry, executor, 42*time.Second)
		if _, err := testee.Predict(ctx, "example.repo/churn:v1", nil); !errors.Is(err, fakeErr) {
			t.Errorf("expected the lookup error, got %v", err)
		}
	})
}
