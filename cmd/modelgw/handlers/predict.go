package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/twinsights/modelgw/pkg/api/types/errors"
	apimodels "github.com/twinsights/modelgw/pkg/api/types/models"
	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/predict"
)

// Predictor serves one prediction. Satisfied by *predict.Service.
type Predictor interface {
	Predict(ctx context.Context, image string, input any) (execute.Result, error)
}

func PredictHandler(predictor Predictor) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req := apimodels.PredictRequest{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithAdvice(err.Error()),
				apierr.WithError(err),
			)
		}
		if req.Image == "" {
			return apierr.BadRequest(`"image" is required`, nil)
		}

		result, err := predictor.Predict(ctx, req.Image, req.Input)
		if err != nil {
			return predictionError(err)
		}

		return c.JSON(http.StatusOK, apimodels.ComposePredictResult(result))
	}
}

func predictionError(err error) error {
	switch {
	case errors.Is(err, predict.ErrModelNotRegistered):
		return apierr.NewErrorMessage(
			http.StatusNotFound, "model is not registered",
			apierr.WithAdvice(`register it with POST /api/models first`),
			apierr.WithError(err),
		)
	case errors.Is(err, execute.ErrBusy):
		return apierr.ServiceUnavailable("all execution slots are busy. retry later", err)
	case errors.Is(err, execute.ErrExecutionFailed):
		// the error message carries whatever diagnostics the
		// container left behind.
		return apierr.NewErrorMessage(
			http.StatusInternalServerError, "prediction failed",
			apierr.WithAdvice(err.Error()),
			apierr.WithError(err),
		)
	default:
		return apierr.InternalServerError(err)
	}
}
