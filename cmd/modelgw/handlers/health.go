package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apimodels "github.com/twinsights/modelgw/pkg/api/types/models"
	"github.com/twinsights/modelgw/pkg/domain/bootstrap"
	"github.com/twinsights/modelgw/pkg/domain/model"
)

// HealthHandler reports store connectivity and whether the catalog
// really holds everything it should: while built-ins are still being
// seeded, and when any of them failed, the status is "degraded".
func HealthHandler(registry model.Registry, report *bootstrap.Report) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		health := apimodels.Health{Status: apimodels.HealthOk, StoreConnected: true}

		if err := registry.Ping(ctx); err != nil {
			health.StoreConnected = false
		} else if count, err := registry.Count(ctx); err == nil {
			health.ModelsRegistered = count
		} else {
			health.StoreConnected = false
		}

		snapshot := report.Snapshot()
		if !health.StoreConnected || report.Degraded() {
			health.Status = apimodels.HealthDegraded
		}
		if 0 < len(snapshot.Failed) {
			health.BuiltinsFailed = snapshot.Failed
		}

		return c.JSON(http.StatusOK, health)
	}
}
