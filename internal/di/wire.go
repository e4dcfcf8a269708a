//go:build wireinject
// +build wireinject

package di

import (
	"ParamSweep/pkg/config"
	"ParamSweep/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvidePublisher,
		ProvideParameterStore,
		ProvideLimiter,
		ProvideCandleProvider,

		// Use cases
		ProvideCatalog,
		ProvideOptimizer,
		ProvidePersister,
		ProvideSweepService,
		ProvideParamsReader,
		ProvideLiveSignals,
		ProvideKafkaSweepHandler,

		// Transport
		ProvideHub,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeToolkit wires the batch optimizer without the HTTP surface.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,
		ProvidePublisher,
		ProvideParameterStore,
		ProvideLimiter,
		ProvideCandleProvider,
		ProvideCatalog,
		ProvideOptimizer,
		ProvidePersister,
		ProvideSweepService,
		ProvideToolkit,
	)
	return &Toolkit{}, nil
}
