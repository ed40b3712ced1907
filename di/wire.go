//go:build wireinject
// +build wireinject

package di

import (
	"datamapper/config"

	"github.com/google/wire"
)

// InitializeContainer creates a fully wired runtime container
func InitializeContainer(cfg *config.Config, builders map[string]config.EngineBuilder) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
