package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/twinsights/modelgw/pkg/domain/extract"
	"github.com/twinsights/modelgw/pkg/domain/runtime/mock"
	"github.com/twinsights/modelgw/pkg/utils/try"
)

func TestExtractor_Extract(t *testing.T) {
	ctx := context.Background()

	t.Run("when the image carries both files, it should return both", func(t *testing.T) {
		rt := mock.NewRuntime()
		rt.Impl.CreateContainer = func(context.Context, string) (string, error) {
			return "fake-container-id", nil
		}
		rt.Impl.CopyFromContainer = func(_ context.Context, id string, path string) ([]byte, bool, error) {
			switch path {
			case "/app/README.md":
				return []byte("# churn model"), true, nil
			case "/app/examples.json":
				return []byte(`[{"age": 41}]`), true, nil
			}
			t.Errorf("unexpected path: %s", path)
			return nil, false, nil
		}
		rt.Impl.RemoveContainer = func(context.Context, string) error { return nil }

		testee := extract.New(rt)
		meta := try.To(testee.Extract(ctx, "example.repo/churn:v1")).OrFatal(t)

		if meta.Readme != "# churn model" {
			t.Errorf("unexpected readme: %q", meta.Readme)
		}
		if len(meta.Examples) != 1 {
			t.Errorf("unexpected examples: %+v", meta.Examples)
		}

		if calls := rt.Calls.RemoveContainer; calls.Times() != 1 || calls[0].Id != "fake-container-id" {
			t.Errorf("the extraction container should be removed: %+v", calls)
		}
	})

	t.Run("when one file is missing, it should still extract the other", func(t *testing.T) {
		rt := mock.NewRuntime()
		rt.Impl.CreateContainer = func(context.Context, string) (string, error) {
			return "fake-container-id", nil
		}
		rt.Impl.CopyFromContainer = func(_ context.Context, id string, path string) ([]byte, bool, error) {
			if path == "/app/examples.json" {
				return []byte(`["x"]`), true, nil
			}
			return nil, false, nil
		}
		rt.Impl.RemoveContainer = func(context.Context, string) error { return nil }

		testee := extract.New(rt)
		meta := try.To(testee.Extract(ctx, "example.repo/churn:v1")).OrFatal(t)

		if meta.Readme != "" {
			t.Errorf("readme should be absent: %q", meta.Readme)
		}
		if len(meta.Examples) != 1 {
			t.Errorf("examples should still be extracted: %+v", meta.Examples)
		}
	})

	t.Run("when examples.json is not a JSON array, it should be treated as absent", func(t *testing.T) {
		rt := mock.NewRuntime()
		rt.Impl.CreateContainer = func(context.Context, string) (string, error) {
			return "fake-container-id", nil
		}
		rt.Impl.CopyFromContainer = func(_ context.Context, id string, path string) ([]byte, bool, error) {
			if path == "/app/examples.json" {
				return []byte(`{"not": "an array"}`), true, nil
			}
			return nil, false, nil
		}
		rt.Impl.RemoveContainer = func(context.Context, string) error { return nil }

		testee := extract.New(rt)
		meta := try.To(testee.Extract(ctx, "example.repo/churn:v1")).OrFatal(t)

		if meta.Examples != nil {
			t.Errorf("malformed examples should be dropped: %+v", meta.Examples)
		}
	})

	t.Run("when copies fail, it should still remove the container", func(t *testing.T) {
		rt := mock.NewRuntime()
		rt.Impl.CreateContainer = func(context.Context, string) (string, error) {
			return "fake-container-id", nil
		}
		rt.Impl.CopyFromContainer = func(context.Context, string, string) ([]byte, bool, error) {
			return nil, false, errors.New("fake copy error")
		}
		rt.Impl.RemoveContainer = func(context.Context, string) error { return nil }

		testee := extract.New(rt)
		meta := try.To(testee.Extract(ctx, "example.repo/churn:v1")).OrFatal(t)

		if meta.Readme != "" || meta.Examples != nil {
			t.Errorf("nothing should be extracted: %+v", meta)
		}
		if calls := rt.Calls.RemoveContainer; calls.Times() != 1 {
			t.Errorf("the extraction container should be removed: %+v", calls)
		}
	})

	t.Run("when the container can not be created, it should fail", func(t *testing.T) {
		rt := mock.NewRuntime()
		rt.Impl.CreateContainer = func(context.Context, string) (string, error) {
			return "", errors.New("fake create error")
		}

		testee := extract.New(rt)
		if _, err := testee.Extract(ctx, "example.repo/churn:v1"); err == nil {
			t.Error("an error should be returned")
		}
	})
}
