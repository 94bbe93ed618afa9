package modelgw

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	conf "github.com/twinsights/modelgw/pkg/configs/gateway"
	"github.com/twinsights/modelgw/pkg/domain/bootstrap"
	"github.com/twinsights/modelgw/pkg/domain/execute"
	"github.com/twinsights/modelgw/pkg/domain/extract"
	"github.com/twinsights/modelgw/pkg/domain/model"
	modeldb "github.com/twinsights/modelgw/pkg/domain/model/db"
	"github.com/twinsights/modelgw/pkg/domain/predict"
	"github.com/twinsights/modelgw/pkg/domain/register"
	"github.com/twinsights/modelgw/pkg/domain/resolve"
	"github.com/twinsights/modelgw/pkg/domain/runtime"
	"github.com/twinsights/modelgw/pkg/domain/runtime/docker"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// ModelGw wires the gateway's components together.
//
// Constructed once at process start and handed into every handler;
// nothing here is ambient or global.
type ModelGw interface {
	Config() *conf.GatewayConfig

	Models() model.Registry
	Registration() *register.Validator
	Prediction() *predict.Service

	Bootstrap() *bootstrap.Bootstrapper
	Report() *bootstrap.Report

	Close()
}

type modelGw struct {
	config *conf.GatewayConfig
	pool   *pgxpool.Pool

	registry     model.Registry
	registration *register.Validator
	prediction   *predict.Service

	bootstrap *bootstrap.Bootstrapper
	report    *bootstrap.Report
}

// Default connects to the backing store and the container engine
// using config and the usual engine environment.
func Default(ctx context.Context, config *conf.GatewayConfig) (ModelGw, error) {
	pool, err := pgxpool.Connect(ctx, config.Database())
	if err != nil {
		return nil, xe.WrapWithNote("can not connect to backing store", err)
	}

	rt, err := docker.Connect()
	if err != nil {
		pool.Close()
		return nil, xe.WrapWithNote("can not connect to container engine", err)
	}

	return New(ctx, config, pool, rt)
}

func New(
	ctx context.Context,
	config *conf.GatewayConfig,
	pool *pgxpool.Pool,
	rt runtime.Interface,
) (ModelGw, error) {
	registry, err := modeldb.New(ctx, pool)
	if err != nil {
		return nil, err
	}

	executor := execute.New(
		rt,
		execute.SharedVolume{
			Source:    config.Volume().Source(),
			LocalRoot: config.Volume().LocalRoot(),
			MountPath: config.Volume().MountPath(),
		},
		execute.WithConcurrency(
			config.Execution().MaxConcurrent(),
			config.Execution().AcquireWait(),
		),
	)

	registration := register.New(
		resolve.New(rt), extract.New(rt), executor, registry,
		config.Execution().Timeout(),
	)
	prediction := predict.New(registry, executor, config.Execution().Timeout())

	g := &modelGw{
		config:       config,
		pool:         pool,
		registry:     registry,
		registration: registration,
		prediction:   prediction,
	}

	if b := config.Builtins(); b != nil {
		g.report = bootstrap.NewReport()
		g.bootstrap = bootstrap.New(
			registry, registration,
			b.Dir(), b.StoreRetries(), b.StoreRetryInterval(),
			g.report, nil,
		)
	} else {
		g.report = bootstrap.CompletedReport()
	}

	return g, nil
}

func (g *modelGw) Config() *conf.GatewayConfig {
	return g.config
}

func (g *modelGw) Models() model.Registry {
	return g.registry
}

func (g *modelGw) Registration() *register.Validator {
	return g.registration
}

func (g *modelGw) Prediction() *predict.Service {
	return g.prediction
}

// Bootstrap is nil when no built-ins are configured.
func (g *modelGw) Bootstrap() *bootstrap.Bootstrapper {
	return g.bootstrap
}

func (g *modelGw) Report() *bootstrap.Report {
	return g.report
}

func (g *modelGw) Close() {
	g.pool.Close()
}
