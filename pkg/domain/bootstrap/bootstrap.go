package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twinsights/modelgw/pkg/domain/model"
	"github.com/twinsights/modelgw/pkg/domain/register"
	"github.com/twinsights/modelgw/pkg/utils/retry"
)

// ErrStoreUnreachable: the backing store did not answer the liveness
// probe within the retry budget.
var ErrStoreUnreachable = errors.New("backing store is unreachable")

// Registerer registers one model. Satisfied by register.Validator.
type Registerer interface {
	Register(ctx context.Context, req register.Request) (register.Registration, error)
}

// Bootstrapper seeds the built-in models at process start.
//
// The backing store usually comes up together with the gateway, so
// the bootstrap first polls it until it answers, then replays a
// normal registration for every built-in descriptor.
type Bootstrapper struct {
	registry   model.Registry
	registerer Registerer
	dir        string

	retries  uint
	interval time.Duration

	report *Report
	logger *log.Logger
}

func New(
	registry model.Registry,
	registerer Registerer,
	dir string,
	retries uint,
	interval time.Duration,
	report *Report,
	logger *log.Logger,
) *Bootstrapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Bootstrapper{
		registry:   registry,
		registerer: registerer,
		dir:        dir,
		retries:    retries,
		interval:   interval,
		report:     report,
		logger:     logger,
	}
}

// Bootstrap waits for the store, then registers every built-in model.
//
// Models that fail do not stop the pass: all built-ins are attempted,
// outcomes land in the Report, and an aggregate error is returned
// when any of them failed.
func (b *Bootstrapper) Bootstrap(ctx context.Context) error {
	defer b.report.finish()

	if err := b.waitForStore(ctx); err != nil {
		b.report.abort(err.Error())
		return err
	}

	dirs, err := FindDescriptorDirs(b.dir)
	if err != nil {
		b.report.abort(err.Error())
		return err
	}

	failed := 0
	for _, dir := range dirs {
		image, err := b.registerOne(ctx, dir)
		if err != nil {
			failed += 1
			b.report.failure(image, err.Error())
			b.logger.Printf("built-in model %s (%s): registration failed: %s", image, dir, err)
			continue
		}
		b.report.success(image)
		b.logger.Printf("built-in model %s: registered", image)
	}

	if 0 < failed {
		return fmt.Errorf("%d of %d built-in models failed to register", failed, len(dirs))
	}
	return nil
}

func (b *Bootstrapper) waitForStore(ctx context.Context) error {
	attempt := uint(0)
	_, err := retry.Blocking(ctx, retry.StaticBackoff(b.interval), func() (struct{}, error) {
		err := b.registry.Ping(ctx)
		if err == nil {
			return struct{}{}, nil
		}

		attempt += 1
		if attempt <= b.retries {
			b.logger.Printf("store is not ready (attempt %d/%d): %s", attempt, b.retries, err)
			return struct{}{}, retry.ErrRetry
		}
		return struct{}{}, fmt.Errorf("%w: %s", ErrStoreUnreachable, err)
	})
	return err
}

func (b *Bootstrapper) registerOne(ctx context.Context, dir string) (image string, err error) {
	d, err := LoadDescriptor(dir)
	if err != nil {
		return dir, err
	}

	_, err = b.registerer.Register(ctx, register.Request{
		Image:            d.Image,
		Title:            d.Title,
		ShortDescription: d.ShortDescription,
		Authors:          d.Authors,
		Examples:         d.Examples,
		Readme:           d.Readme,
	})
	return d.Image, err
}
