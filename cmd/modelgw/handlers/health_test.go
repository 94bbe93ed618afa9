package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/twinsights/modelgw/cmd/modelgw/handlers"
	apimodels "github.com/twinsights/modelgw/pkg/api/types/models"
	"github.com/twinsights/modelgw/pkg/domain/bootstrap"
	mockdb "github.com/twinsights/modelgw/pkg/domain/model/mock"
	httptestutil "github.com/twinsights/modelgw/internal/testutils/http"
)

// failedBuiltinDir is a built-ins directory holding one model that
// fakeRegisterer will refuse.
func failedBuiltinDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "fraud")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model.yaml"), []byte("image: builtin/fraud:v1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func getHealth(t *testing.T, testee echo.HandlerFunc) apimodels.Health {
	t.Helper()

	e := echo.New()
	c, resp := httptestutil.Get(e, "/api/health")
	if err := testee(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Errorf("unexpected status: %d", resp.Code)
	}

	var health apimodels.Health
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	return health
}

func TestHealthHandler(t *testing.T) {
	t.Run("when the store answers and the bootstrap is clean, it should be ok", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error { return nil }
		registry.Impl.Count = func(context.Context) (int, error) { return 3, nil }

		health := getHealth(t, handlers.HealthHandler(registry, bootstrap.CompletedReport()))

		if health.Status != apimodels.HealthOk || !health.StoreConnected || health.ModelsRegistered != 3 {
			t.Errorf("unexpected health: %+v", health)
		}
		if health.BuiltinsFailed != nil {
			t.Errorf("no failures should be reported: %+v", health.BuiltinsFailed)
		}
	})

	t.Run("when the store does not answer, it should be degraded", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error {
			return errors.New("fake: connection refused")
		}

		health := getHealth(t, handlers.HealthHandler(registry, bootstrap.CompletedReport()))

		if health.Status != apimodels.HealthDegraded || health.StoreConnected {
			t.Errorf("unexpected health: %+v", health)
		}
	})

	t.Run("while the bootstrap is still running, it should be degraded", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error { return nil }
		registry.Impl.Count = func(context.Context) (int, error) { return 0, nil }

		health := getHealth(t, handlers.HealthHandler(registry, bootstrap.NewReport()))

		if health.Status != apimodels.HealthDegraded || !health.StoreConnected {
			t.Errorf("unexpected health: %+v", health)
		}
	})

	t.Run("when built-ins failed, it should report which and why", func(t *testing.T) {
		registry := mockdb.NewRegistry()
		registry.Impl.Ping = func(context.Context) error { return nil }
		registry.Impl.Count = func(context.Context) (int, error) { return 1, nil }

		report := bootstrap.NewReport()

		registerer := &fakeRegisterer{err: errors.New("fake registration error")}
		boot := bootstrap.New(registry, registerer, failedBuiltinDir(t), 1, 0, report, nil)
		if err := boot.Bootstrap(context.Background()); err == nil {
			t.Fatal("the bootstrap should report the failure")
		}

		health := getHealth(t, handlers.HealthHandler(registry, report))

		if health.Status != apimodels.HealthDegraded {
			t.Errorf("unexpected status: %s", health.Status)
		}
		if reason, found := health.BuiltinsFailed["builtin/fraud:v1"]; !found || reason == "" {
			t.Errorf("the failure should be reported: %+v", health.BuiltinsFailed)
		}
	})
}
