//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/dataconverter/internal/config"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/schema/registry"
	"github.com/zeusync/dataconverter/internal/server"
)

func InitializeRegistry(cfg config.Config) *registry.Registry {
	wire.Build(ProvideLogger, ProvideRegistry)
	return nil
}

func InitializeMigrator(cfg config.Config) (*migrator.Migrator, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		wire.Bind(new(migrator.Converter), new(*registry.Registry)),
		ProvideMigrator,
	)
	return nil, nil
}

func InitializeServer(cfg config.Config) (*server.Server, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
