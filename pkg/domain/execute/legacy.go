package execute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
)

// Legacy protocol adapter.
//
// Models built before the output-file convention take a single
// positional argument (the input path) and print their whole result
// as JSON on their output stream. This mode is deprecated: it cannot
// tell diagnostics from payload, so it is kept out of the primary
// path and only tried when a run leaves no output file behind.

// runLegacy restarts the container in single-argument mode.
//
// Legacy models print their result on stdout and diagnostics on
// stderr, but the engine hands both back as one combined stream.
// The diagnostic lines are stripped off with Classify; what remains
// must be a JSON document, and is synthesized into the session's
// output artifact so downstream handling is uniform with the current
// protocol.
func (e *Executor) runLegacy(ctx context.Context, image string, s *session, timeout time.Duration) (runtime.Exit, error) {
	exit, err := e.rt.RunContainer(ctx, runtime.RunSpec{
		Image:   image,
		Command: []string{predictCommand, s.containerIn},
		Binds:   []runtime.VolumeBinding{{Source: e.volume.Source, Target: e.volume.MountPath}},
		Timeout: timeout,
	})
	if err != nil {
		return runtime.Exit{}, fmt.Errorf("%w: %s", ErrExecutionFailed, err)
	}

	stdout, _ := Classify(exit.Output)
	payload := bytes.TrimSpace([]byte(stdout))
	if !json.Valid(payload) {
		return runtime.Exit{}, fmt.Errorf("%w: legacy output is not a JSON document", ErrExecutionFailed)
	}

	if err := s.synthesizeOutput(payload); err != nil {
		return runtime.Exit{}, fmt.Errorf("%w: %s", ErrExecutionFailed, err)
	}
	return exit, nil
}
