// Package injector wires the process components from a loaded configuration.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/dataconverter/internal/config"
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/schema/registry"
	"github.com/zeusync/dataconverter/internal/datafix"
	"github.com/zeusync/dataconverter/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	wire.Bind(new(migrator.Converter), new(*registry.Registry)),
	ProvideMigrator,
	ProvideTarget,
	ProvideServer,
)

// ProvideLogger returns the process-wide logger at the configured level.
func ProvideLogger(cfg config.Config) log.Log {
	logger := log.Provide()
	logger.SetLevel(log.ParseLevel(cfg.Log.Level))
	return logger
}

func ProvideRegistry(cfg config.Config, logger log.Log) *registry.Registry {
	return datafix.NewRegistry(logger, cfg.Options())
}

func ProvideMigrator(cfg config.Config, conv migrator.Converter, logger log.Log) (*migrator.Migrator, error) {
	return migrator.New(conv, logger, migrator.WithWorkers(cfg.Migrator.Workers))
}

func ProvideTarget(cfg config.Config) (converter.Version, error) {
	return cfg.TargetVersion()
}

func ProvideServer(cfg config.Config, m *migrator.Migrator, target converter.Version, logger log.Log) *server.Server {
	return server.New(m, cfg.Server, target, logger)
}
