package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	apierr "github.com/twinsights/modelgw/pkg/api/types/errors"
	apimodels "github.com/twinsights/modelgw/pkg/api/types/models"
	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/model"
	"github.com/twinsights/modelgw/pkg/domain/register"
	"github.com/twinsights/modelgw/pkg/domain/resolve"
)

// Registerer registers one model. Satisfied by *register.Validator.
type Registerer interface {
	Register(ctx context.Context, req register.Request) (register.Registration, error)
}

func RegisterModelHandler(registerer Registerer) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req := apimodels.RegisterRequest{}
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

		registration, err := registerer.Register(ctx, register.Request{
			Image:            req.Image,
			Title:            req.Title,
			ShortDescription: req.ShortDescription,
			Authors:          req.Authors,
			Examples:         req.Examples,
			Readme:           req.Readme,
		})
		if err != nil {
			return registrationError(err)
		}

		return c.JSON(http.StatusOK, apimodels.RegisterResult{
			Status:             "ok",
			Image:              registration.Model.Image,
			ExamplePredictions: registration.ExamplePredictions,
		})
	}
}

func registrationError(err error) error {
	switch {
	case errors.Is(err, resolve.ErrImageUnavailable),
		errors.Is(err, register.ErrValidation),
		errors.Is(err, execute.ErrExecutionFailed):
		return apierr.BadRequest(err.Error(), err)
	case errors.Is(err, execute.ErrBusy):
		return apierr.ServiceUnavailable("all execution slots are busy. retry later", err)
	default:
		return apierr.InternalServerError(err)
	}
}

func ListModelsHandler(registry model.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		found, err := registry.List(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		summaries := make([]apimodels.Summary, 0, len(found))
		for _, m := range found {
			summaries = append(summaries, apimodels.ComposeSummary(m))
		}
		return c.JSON(http.StatusOK, summaries)
	}
}

func GetModelHandler(registry model.Registry, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		// image references carry "/"; callers URL-encode them.
		image, err := url.PathUnescape(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("malformed image reference", err)
		}

		m, found, err := registry.Find(ctx, image)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if !found {
			return apierr.NewErrorMessage(
				http.StatusNotFound, "model is not registered",
				apierr.WithAdvice(`register it with POST /api/models first`),
			)
		}
		return c.JSON(http.StatusOK, apimodels.ComposeDetail(m))
	}
}
