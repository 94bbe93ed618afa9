package models

import (
	"reflect"

	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/model"
)

// RegisterRequest is the body of POST /api/models .
type RegisterRequest struct {
	Image            string `json:"image"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Authors          string `json:"authors"`

	// optional; recovered from the image when omitted.
	Examples []any  `json:"examples,omitempty"`
	Readme   string `json:"readme,omitempty"`
}

// RegisterResult confirms a registration, echoing what the dry run
// predicted for the model's own examples.
type RegisterResult struct {
	Status             string `json:"status"`
	Image              string `json:"image"`
	ExamplePredictions any    `json:"examplePredictions"`
}

// Summary is one row of GET /api/models . The readme is omitted.
type Summary struct {
	Image            string `json:"image"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Authors          string `json:"authors"`
	Examples         []any  `json:"examples"`
}

func (s *Summary) Equal(o *Summary) bool {
	return s.Image == o.Image &&
		s.Title == o.Title &&
		s.ShortDescription == o.ShortDescription &&
		s.Authors == o.Authors &&
		reflect.DeepEqual(s.Examples, o.Examples)
}

func ComposeSummary(m model.RegisteredModel) Summary {
	return Summary{
		Image:            m.Image,
		Title:            m.Title,
		ShortDescription: m.ShortDescription,
		Authors:          m.Authors,
		Examples:         m.Examples,
	}
}

// Detail is the full record of GET /api/models/:image .
type Detail struct {
	Summary
	Readme string `json:"readme"`
}

func (d *Detail) Equal(o *Detail) bool {
	return d.Summary.Equal(&o.Summary) && d.Readme == o.Readme
}

func ComposeDetail(m model.RegisteredModel) Detail {
	return Detail{
		Summary: ComposeSummary(m),
		Readme:  m.Readme,
	}
}

// PredictRequest is the body of POST /api/predict .
type PredictRequest struct {
	Image string `json:"image"`
	Input any    `json:"input"`
}

// PredictResult carries the decoded prediction and the classified
// diagnostics of the container run.
type PredictResult struct {
	Predictions any    `json:"predictions"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
}

func ComposePredictResult(r execute.Result) PredictResult {
	return PredictResult{
		Predictions: r.Predictions,
		Stdout:      r.Stdout,
		Stderr:      r.Stderr,
	}
}

// Health is the body of GET /api/health .
type Health struct {
	Status           string `json:"status"`
	ModelsRegistered int    `json:"modelsRegistered"`
	StoreConnected   bool   `json:"storeConnected"`

	// BuiltinsFailed maps image tag to failure reason; present only
	// when the startup bootstrap left gaps in the catalog.
	BuiltinsFailed map[string]string `json:"builtinsFailed,omitempty"`
}

const (
	HealthOk       = "ok"
	HealthDegraded = "degraded"
)
