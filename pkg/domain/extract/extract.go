package extract

import (
	"context"
	"encoding/json"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// Well-known paths model authors may bake into their image.
const (
	readmePath   = "/app/README.md"
	examplesPath = "/app/examples.json"
)

// Metadata found inside a model image.
//
// Both fields are optional: a missing source file is a missing value,
// not an error.
type Metadata struct {
	// Readme is the baked-in documentation. "" when absent.
	Readme string

	// Examples are the baked-in example payloads. nil when absent.
	Examples []any
}

// Extractor copies optional documentation out of a built image.
//
// It is used only to fill gaps when a caller omits readme/examples at
// registration time.
type Extractor struct {
	rt runtime.Interface
}

func New(rt runtime.Interface) *Extractor {
	return &Extractor{rt: rt}
}

// Extract creates (but never starts) a container for image and copies
// the well-known files out of its filesystem.
//
// Each file is extracted independently: a missing README does not
// prevent extracting examples, and vice versa. The created container
// is removed unconditionally.
func (x *Extractor) Extract(ctx context.Context, image string) (Metadata, error) {
	id, err := x.rt.CreateContainer(ctx, image)
	if err != nil {
		return Metadata{}, xe.WrapWithNote("failed to create container for extraction", err)
	}
	defer x.rt.RemoveContainer(ctx, id)

	meta := Metadata{}

	if content, found, err := x.rt.CopyFromContainer(ctx, id, readmePath); err == nil && found {
		meta.Readme = string(content)
	}

	if content, found, err := x.rt.CopyFromContainer(ctx, id, examplesPath); err == nil && found {
		var examples []any
		if err := json.Unmarshal(content, &examples); err == nil {
			meta.Examples = examples
		}
	}

	return meta, nil
}
