package di

import (
	"datamapper/config"
	"datamapper/mapper"
	"datamapper/pkg/observability"
	"datamapper/registry"

	"go.uber.org/zap"
)

// ProvideLogger creates the runtime logger from the logging configuration
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Logging.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideCollector creates the runtime metrics collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("datamapper")
}

// ProvideRegistry creates the environment registry and applies the declared
// environments to it
func ProvideRegistry(cfg *config.Config, builders map[string]config.EngineBuilder, logger *zap.Logger) (*registry.Registry, error) {
	reg := registry.New(logger)
	if err := cfg.Apply(reg, builders, logger); err != nil {
		return nil, err
	}
	return reg, nil
}

// ProvideResolver creates the mapper resolver
func ProvideResolver(reg *registry.Registry, logger *zap.Logger, metrics *observability.Collector) *mapper.Resolver {
	return mapper.NewResolver(reg, logger, metrics)
}
