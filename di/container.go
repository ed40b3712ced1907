package di

import (
	"datamapper/config"
	"datamapper/mapper"
	"datamapper/pkg/observability"
	"datamapper/registry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds the wired runtime components
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Collector
	Registry *registry.Registry
	Resolver *mapper.Resolver
}

// SuperSet is the provider set for the complete runtime
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCollector,
	ProvideRegistry,
	ProvideResolver,
	wire.Struct(new(Container), "*"),
)
