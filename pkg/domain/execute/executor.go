package execute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/twinsights/modelgw/pkg/domain/runtime"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// ErrExecutionFailed: the container ran but left no usable result.
var ErrExecutionFailed = errors.New("execution failed")

// ErrBusy: all execution slots are taken and none freed up in time.
var ErrBusy = errors.New("all execution slots are busy")

// models receive their command as `./predict <input> [<output>]`.
const predictCommand = "./predict"

// SharedVolume is the filesystem location this process shares with
// every model container it spawns.
//
// The same volume appears thrice: as the engine volume to bind
// (Source), as a local directory in this process (LocalRoot), and as
// a directory inside the container (MountPath).
type SharedVolume struct {
	Source    string
	LocalRoot string
	MountPath string
}

// Result of one model execution.
type Result struct {
	// Predictions is the decoded output document of the model.
	Predictions any

	// Stdout and Stderr are the classified halves of the container's
	// combined output. See Classify for what "classified" means here.
	Stdout string
	Stderr string
}

// Executor runs one ephemeral model container per invocation,
// exchanging payloads through the shared volume.
type Executor struct {
	rt     runtime.Interface
	volume SharedVolume

	// admission control. nil = unbounded.
	slots       *semaphore.Weighted
	acquireWait time.Duration
}

type Option func(*Executor) *Executor

// WithConcurrency bounds how many containers may run at once.
//
// An invocation that cannot acquire a slot within `wait` fails
// with ErrBusy instead of piling more load onto the engine.
func WithConcurrency(n int64, wait time.Duration) Option {
	return func(e *Executor) *Executor {
		if 0 < n {
			e.slots = semaphore.NewWeighted(n)
			e.acquireWait = wait
		}
		return e
	}
}

func New(rt runtime.Interface, volume SharedVolume, options ...Option) *Executor {
	e := &Executor{rt: rt, volume: volume}
	for _, opt := range options {
		e = opt(e)
	}
	return e
}

// Run executes the model image once against input.
//
// The input payload is serialized onto the shared volume, the
// container is started with the current two-path protocol, and the
// output file is decoded as the prediction. Containers predating the
// output-file protocol are retried through the legacy adapter.
//
// Session artifacts are removed on every path out of this function.
func (e *Executor) Run(ctx context.Context, image string, input any, timeout time.Duration) (Result, error) {
	if err := e.acquire(ctx); err != nil {
		return Result{}, err
	}
	defer e.release()

	s, err := newSession(e.volume)
	if err != nil {
		return Result{}, xe.Wrap(err)
	}
	defer s.cleanup()

	if err := s.writeInput(input); err != nil {
		return Result{}, xe.WrapWithNote("failed to write input artifact", err)
	}

	exit, err := e.rt.RunContainer(ctx, runtime.RunSpec{
		Image:   image,
		Command: []string{predictCommand, s.containerIn, s.containerOut},
		Binds:   []runtime.VolumeBinding{{Source: e.volume.Source, Target: e.volume.MountPath}},
		Timeout: timeout,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrExecutionFailed, err)
	}

	if !s.hasOutput() {
		// the model may predate the output-file protocol.
		legacyExit, err := e.runLegacy(ctx, image, s, timeout)
		if err != nil {
			return Result{}, err
		}
		exit = legacyExit
	}

	predictions, found, err := s.readOutput()
	if err != nil {
		return Result{}, fmt.Errorf("%w: malformed output: %s", ErrExecutionFailed, err)
	}
	if !found {
		return Result{}, fmt.Errorf("%w: no output produced", ErrExecutionFailed)
	}

	stdout, stderr := Classify(exit.Output)
	return Result{Predictions: predictions, Stdout: stdout, Stderr: stderr}, nil
}

func (e *Executor) acquire(ctx context.Context) error {
	if e.slots == nil {
		return nil
	}

	actx := ctx
	if 0 < e.acquireWait {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, e.acquireWait)
		defer cancel()
	}
	if err := e.slots.Acquire(actx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", ErrBusy, err)
	}
	return nil
}

func (e *Executor) release() {
	if e.slots != nil {
		e.slots.Release(1)
	}
}
