// Package registry holds the execution environments known to the mapper
// runtime: per environment identifier, the engine handle and default
// execution mode needed to open sessions.
package registry

import (
	"fmt"
	"sync"

	"datamapper/engine"
	apperrors "datamapper/pkg/errors"

	"go.uber.org/zap"
)

// DefaultEnvironmentID is the sentinel identifier of the default environment.
const DefaultEnvironmentID = "default"

// Environment is one execution context: an engine handle plus the execution
// mode used when no caller overrides it. Values are immutable once
// registered; re-registering an identifier replaces the whole entry.
type Environment struct {
	ID          string
	Engine      engine.ExecutionEngine
	DefaultMode engine.ExecMode
}

// Registry maps environment identifiers to Environments. Writes happen at
// configuration time; reads are concurrent and never observe a torn entry.
type Registry struct {
	mu     sync.RWMutex
	envs   map[string]Environment
	logger *zap.Logger
}

// New creates an empty Registry
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		envs:   make(map[string]Environment),
		logger: logger,
	}
}

// Register installs or replaces the environment for an identifier.
func (r *Registry) Register(id string, eng engine.ExecutionEngine, mode engine.ExecMode) {
	r.mu.Lock()
	_, replaced := r.envs[id]
	r.envs[id] = Environment{ID: id, Engine: eng, DefaultMode: mode}
	r.mu.Unlock()

	r.logger.Info("environment registered",
		zap.String("environment", id),
		zap.String("mode", string(mode)),
		zap.Bool("replaced", replaced),
	)
}

// Resolve returns the environment for an identifier. An empty identifier
// selects the default environment. Unknown identifiers fail with a
// configuration error; there is no silent fallback, since routing a call to
// the wrong data source is worse than failing it.
func (r *Registry) Resolve(id string) (Environment, error) {
	if id == "" {
		id = DefaultEnvironmentID
	}

	r.mu.RLock()
	env, ok := r.envs[id]
	r.mu.RUnlock()

	if !ok {
		return Environment{}, apperrors.NewConfigurationError(
			fmt.Sprintf("environment %q is not registered", id))
	}
	return env, nil
}

// IDs returns the identifiers of all registered environments, for diagnostics.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.envs))
	for id := range r.envs {
		ids = append(ids, id)
	}
	return ids
}
