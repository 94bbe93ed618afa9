package model

import (
	"context"
	"reflect"
)

// RegisteredModel is the registration document persisted per model.
//
// Image is the natural key: a registration for an already known image
// replaces the stored document wholesale.
type RegisteredModel struct {
	Image            string `json:"image"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	Authors          string `json:"authors"`
	Readme           string `json:"readme"`
	Examples         []any  `json:"examples"`
}

func (m RegisteredModel) Equal(o RegisteredModel) bool {
	return m.Image == o.Image &&
		m.Title == o.Title &&
		m.ShortDescription == o.ShortDescription &&
		m.Authors == o.Authors &&
		m.Readme == o.Readme &&
		reflect.DeepEqual(m.Examples, o.Examples)
}

// Registry is the backing store of RegisteredModels.
//
// It is a plain key-value store keyed by image tag.
// There is no partial update: Upsert replaces the whole document.
type Registry interface {
	// Ping probes whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Upsert inserts the model, or replaces the stored document
	// when the image is already registered.
	Upsert(ctx context.Context, m RegisteredModel) error

	// Find returns the model registered for the image.
	//
	// # Returns
	//
	// - RegisteredModel: the stored document. Zero value when not found.
	//
	// - bool: true when the image is registered.
	//
	// - error: store access error.
	Find(ctx context.Context, image string) (RegisteredModel, bool, error)

	// List returns all registered models.
	List(ctx context.Context) ([]RegisteredModel, error)

	// Count returns the number of registered models.
	Count(ctx context.Context) (int, error)
}
