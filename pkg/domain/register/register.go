package register

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/extract"
	"github.com/twinsights/modelgw/pkg/domain/model"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// ErrValidation: the registration request is missing required
// metadata that could not be recovered from the image either.
var ErrValidation = errors.New("validation error")

// Request is a registration request for one model image.
//
// Examples and Readme may be omitted; the validator then tries to
// recover them from well-known files inside the image.
type Request struct {
	Image            string
	Title            string
	ShortDescription string
	Authors          string
	Examples         []any
	Readme           string
}

// Registration is the outcome of a successful registration.
type Registration struct {
	Model model.RegisteredModel

	// ExamplePredictions is what the dry run produced for the model's
	// own examples; returned to the caller as proof of callability.
	ExamplePredictions any
}

// ImageResolver makes the image locally available.
type ImageResolver interface {
	Resolve(ctx context.Context, image string) error
}

// MetadataExtractor recovers optional metadata from the image.
type MetadataExtractor interface {
	Extract(ctx context.Context, image string) (extract.Metadata, error)
}

// Executor dry-runs the model.
type Executor interface {
	Run(ctx context.Context, image string, input any, timeout time.Duration) (execute.Result, error)
}

// Validator proves a model is callable before persisting it.
type Validator struct {
	resolver  ImageResolver
	extractor MetadataExtractor
	executor  Executor
	registry  model.Registry
	timeout   time.Duration
}

func New(
	resolver ImageResolver,
	extractor MetadataExtractor,
	executor Executor,
	registry model.Registry,
	timeout time.Duration,
) *Validator {
	return &Validator{
		resolver:  resolver,
		extractor: extractor,
		executor:  executor,
		registry:  registry,
		timeout:   timeout,
	}
}

// Register resolves the image, fills metadata gaps from the image
// itself, dry-runs the model against its own examples and, only when
// all of that worked, upserts the registration document.
//
// A registration for an already known image replaces the stored
// document wholesale.
func (v *Validator) Register(ctx context.Context, req Request) (Registration, error) {
	if err := v.resolver.Resolve(ctx, req.Image); err != nil {
		return Registration{}, err
	}

	examples, readme := req.Examples, req.Readme
	if len(examples) == 0 || readme == "" {
		meta, err := v.extractor.Extract(ctx, req.Image)
		if err != nil {
			return Registration{}, err
		}
		if len(examples) == 0 {
			examples = meta.Examples
		}
		if readme == "" {
			readme = meta.Readme
		}
	}
	if len(examples) == 0 || readme == "" {
		return Registration{}, fmt.Errorf(
			"%w: examples and readme are required (pass them in the request, or bake them into the image)",
			ErrValidation,
		)
	}

	// dry run: the model must be callable with its own examples.
	result, err := v.executor.Run(ctx, req.Image, examples, v.timeout)
	if err != nil {
		return Registration{}, err
	}

	m := model.RegisteredModel{
		Image:            req.Image,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Authors:          req.Authors,
		Readme:           readme,
		Examples:         examples,
	}
	if err := v.registry.Upsert(ctx, m); err != nil {
		return Registration{}, xe.WrapWithNote("model validated but could not be persisted", err)
	}

	return Registration{Model: m, ExamplePredictions: result.Predictions}, nil
}
