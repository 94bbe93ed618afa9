package bootstrap_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/bootstrap"
	mockdb "github.com/twinsights/modelgw/pkg/domain/model/mock"
	"github.com/twinsights/modelgw/pkg/domain/register"
	"github.com/twinsights/modelgw/pkg/utils/cmp"
	"github.com/twinsights/modelgw/pkg/utils/try"
)

type fakeRegisterer struct {
	err   func(image string) error
	calls []register.Request
}

func (f *fakeRegisterer) Register(_ context.Context, req register.Request) (register.Registration, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return register.Registration{}, f.err(req.Image)
	}
	return register.Registration{}, nil
}

func builtinDir(t *testing.T, descriptors map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, descriptor := range descriptors {
		dir := filepath.Join(root, name)
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(descriptor), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBootstrapper_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("when the store is up, it should register every built-in", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"churn": "image: builtin/churn:v1\ntitle: Churn\nshortDescription: predicts churn\nauthors: data team\n",
			"fraud": "image: builtin/fraud:v1\ntitle: Fraud\nshortDescription: flags fraud\nauthors: data team\n",
		})

		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error { return nil }
		registerer := &fakeRegisterer{}
		report := bootstrap.NewReport()

		testee := bootstrap.New(registry, registerer, root, 3, time.Millisecond, report, nil)
		if err := testee.Bootstrap(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		images := []string{}
		for _, call := range registerer.calls {
			images = append(images, call.Image)
		}
		if !cmp.SliceEq(images, []string{"builtin/churn:v1", "builtin/fraud:v1"}) {
			t.Errorf("unexpected registrations: %v", images)
		}

		snapshot := report.Snapshot()
		if !snapshot.Done || len(snapshot.Succeeded) != 2 || len(snapshot.Failed) != 0 {
			t.Errorf("unexpected report: %+v", snapshot)
		}
		if report.Degraded() {
			t.Error("a clean bootstrap should not be degraded")
		}
	})

	t.Run("when the store needs a few attempts, it should keep polling within the budget", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"churn": "image: builtin/churn:v1\n",
		})

		attempts := 0
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error {
			attempts += 1
			if attempts < 3 {
				return errors.New("fake: connection refused")
			}
			return nil
		}
		registerer := &fakeRegisterer{}
		report := bootstrap.NewReport()

		testee := bootstrap.New(registry, registerer, root, 5, time.Millisecond, report, nil)
		if err := testee.Bootstrap(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(registerer.calls) != 1 {
			t.Errorf("the built-in should be registered after the store comes up: %+v", registerer.calls)
		}
	})

	t.Run("when the store never answers, it should fail with ErrStoreUnreachable", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error {
			return errors.New("fake: connection refused")
		}
		registerer := &fakeRegisterer{}
		report := bootstrap.NewReport()

		testee := bootstrap.New(registry, registerer, t.TempDir(), 2, time.Millisecond, report, nil)
		if err := testee.Bootstrap(ctx); !errors.Is(err, bootstrap.ErrStoreUnreachable) {
			t.Errorf("expected ErrStoreUnreachable, got %v", err)
		}

		if len(registerer.calls) != 0 {
			t.Error("no registration should be attempted without a store")
		}

		snapshot := report.Snapshot()
		if !snapshot.Done || snapshot.Aborted == "" {
			t.Errorf("the report should record the abort: %+v", snapshot)
		}
		if !report.Degraded() {
			t.Error("an aborted bootstrap should leave the gateway degraded")
		}
	})

	t.Run("when some built-ins fail, it should attempt all of them and aggregate", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"churn": "image: builtin/churn:v1\n",
			"fraud": "image: builtin/fraud:v1\n",
			"spam":  "image: builtin/spam:v1\n",
		})

		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error { return nil }
		registerer := &fakeRegisterer{err: func(image string) error {
			if image == "builtin/fraud:v1" {
				return errors.New("fake registration error")
			}
			return nil
		}}
		report := bootstrap.NewReport()

		testee := bootstrap.New(registry, registerer, root, 3, time.Millisecond, report, nil)
		if err := testee.Bootstrap(ctx); err == nil {
			t.Error("an aggregate error should be returned")
		}

		if len(registerer.calls) != 3 {
			t.Errorf("every built-in should be attempted: %+v", registerer.calls)
		}

		snapshot := report.Snapshot()
		if len(snapshot.Succeeded) != 2 {
			t.Errorf("unexpected successes: %+v", snapshot.Succeeded)
		}
		if !cmp.MapEq(snapshot.Failed, map[string]string{"builtin/fraud:v1": "fake registration error"}) {
			t.Errorf("unexpected failures: %+v", snapshot.Failed)
		}
		if !report.Degraded() {
			t.Error("failed built-ins should leave the gateway degraded")
		}
	})
}

func TestLoadDescriptor(t *testing.T) {
	t.Run("it should load inline metadata", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"churn": `image: builtin/churn:v1
title: Churn
shortDescription: predicts churn
authors: data team
readme: "# churn"
examples:
  - age: 41
`,
		})

		d := try.To(bootstrap.LoadDescriptor(filepath.Join(root, "churn"))).OrFatal(t)
		if d.Image != "builtin/churn:v1" || d.Readme != "# churn" || len(d.Examples) != 1 {
			t.Errorf("unexpected descriptor: %+v", d)
		}
	})

	t.Run("it should read readmeFile relative to the descriptor", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"churn": "image: builtin/churn:v1\nreadmeFile: README.md\n",
		})
		if err := os.WriteFile(filepath.Join(root, "churn", "README.md"), []byte("# from file"), 0644); err != nil {
			t.Fatal(err)
		}

		d := try.To(bootstrap.LoadDescriptor(filepath.Join(root, "churn"))).OrFatal(t)
		if d.Readme != "# from file" {
			t.Errorf("unexpected readme: %q", d.Readme)
		}
	})

	t.Run("it should reject a descriptor without an image", func(t *testing.T) {
		root := builtinDir(t, map[string]string{
			"broken": "title: no image here\n",
		})

		if _, err := bootstrap.LoadDescriptor(filepath.Join(root, "broken")); err == nil {
			t.Error("an error should be returned")
		}
	})
}

func TestFindDescriptorDirs(t *testing.T) {
	root := builtinDir(t, map[string]string{
		"churn": "image: builtin/churn:v1\n",
		"fraud": "image: builtin/fraud:v1\n",
	})
	if err := os.Mkdir(filepath.Join(root, "not-a-model"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray-file"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	dirs := try.To(bootstrap.FindDescriptorDirs(root)).OrFatal(t)
	want := []string{filepath.Join(root, "churn"), filepath.Join(root, "fraud")}
	if !cmp.SliceEq(dirs, want) {
		t.Errorf("unexpected dirs: got %v, want %v", dirs, want)
	}
}
