// Package mapper resolves mapper contracts to callable, cached proxy
// instances and runs the per-call session lifecycle on their behalf.
//
// A mapper contract is a Go interface describing data-access operations for
// one record type. Instead of intercepting methods at runtime, each contract
// has one concrete adapter type whose methods delegate through a Dispatcher;
// the adapter constructor is registered once and the Resolver memoizes one
// adapter instance per (environment, contract) pair.
package mapper

import (
	"fmt"
	"reflect"
	"sync"

	apperrors "datamapper/pkg/errors"
	"datamapper/pkg/observability"
	"datamapper/registry"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProxyFactory builds the concrete adapter for one contract, bound to the
// dispatcher it receives. The returned value must implement the contract
// interface and must be safe for concurrent use; adapters hold no mutable
// state, so that falls out naturally.
type ProxyFactory func(d *Dispatcher) any

type cacheKey struct {
	environmentID string
	contract      reflect.Type
}

// Resolver owns the two caches of the runtime: record type → contract type,
// and (environment, contract) → proxy instance. Proxies are materialized
// lazily, exactly once per key, and kept for the process lifetime.
type Resolver struct {
	registry *registry.Registry
	logger   *zap.Logger
	metrics  *observability.Collector

	mu        sync.RWMutex
	bindings  map[reflect.Type]reflect.Type
	factories map[reflect.Type]ProxyFactory
	proxies   map[cacheKey]any

	group singleflight.Group
}

// NewResolver creates a Resolver backed by the given environment registry.
// metrics may be nil.
func NewResolver(reg *registry.Registry, logger *zap.Logger, metrics *observability.Collector) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		registry:  reg,
		logger:    logger,
		metrics:   metrics,
		bindings:  make(map[reflect.Type]reflect.Type),
		factories: make(map[reflect.Type]ProxyFactory),
		proxies:   make(map[cacheKey]any),
	}
}

// RegisterContract installs the adapter constructor for a contract type.
// Registering the same contract again replaces the factory for proxies not
// yet built; already-materialized proxies are unaffected.
func (r *Resolver) RegisterContract(contractType reflect.Type, factory ProxyFactory) {
	r.mu.Lock()
	r.factories[contractType] = factory
	r.mu.Unlock()

	r.logger.Debug("contract registered", zap.String("contract", contractName(contractType)))
}

// BindRecordType associates a record type with its mapper contract.
// Last write wins, which supports hot reconfiguration in long-lived
// processes; concurrent binds and resolves stay consistent.
func (r *Resolver) BindRecordType(recordType, contractType reflect.Type) {
	r.mu.Lock()
	r.bindings[recordType] = contractType
	r.mu.Unlock()

	r.logger.Debug("record type bound",
		zap.String("record", contractName(recordType)),
		zap.String("contract", contractName(contractType)),
	)
}

// MapperForRecord returns the proxy for the contract bound to recordType,
// under the default environment.
func (r *Resolver) MapperForRecord(recordType reflect.Type) (any, error) {
	r.mu.RLock()
	contractType, ok := r.bindings[recordType]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NewUnboundRecordTypeError(contractName(recordType))
	}
	return r.MapperForContract(contractType, registry.DefaultEnvironmentID)
}

// MapperForContract returns the memoized proxy for (environmentID,
// contractType), materializing it on first access. An empty environmentID
// selects the default environment.
//
// Construction is compute-once-publish: concurrent first requests for the
// same key collapse onto a single materialization and all callers receive
// the same instance. The environment's engine handle and default mode are
// resolved at first access and captured into the proxy's dispatcher; later
// changes to the environment registry do not affect already-built proxies.
// A failed resolution caches nothing, so the next request retries cleanly.
func (r *Resolver) MapperForContract(contractType reflect.Type, environmentID string) (any, error) {
	if environmentID == "" {
		environmentID = registry.DefaultEnvironmentID
	}
	key := cacheKey{environmentID: environmentID, contract: contractType}

	r.mu.RLock()
	proxy, ok := r.proxies[key]
	r.mu.RUnlock()
	if ok {
		return proxy, nil
	}

	// The singleflight group serializes materialization per key without
	// holding either cache lock across registry resolution or factory
	// execution.
	v, err, _ := r.group.Do(flightKey(key), func() (any, error) {
		r.mu.RLock()
		existing, ok := r.proxies[key]
		factory, haveFactory := r.factories[contractType]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}
		if !haveFactory {
			return nil, apperrors.NewConfigurationError(
				fmt.Sprintf("no proxy factory registered for contract %s", contractName(contractType)))
		}

		env, rerr := r.registry.Resolve(environmentID)
		if rerr != nil {
			return nil, rerr
		}

		d := newDispatcher(contractType, env.ID, env.Engine, env.DefaultMode, r.logger, r.metrics)
		built := factory(d)

		r.mu.Lock()
		r.proxies[key] = built
		r.mu.Unlock()

		r.metrics.ProxyBuilt(env.ID, contractName(contractType))
		r.logger.Info("mapper proxy materialized",
			zap.String("environment", env.ID),
			zap.String("contract", contractName(contractType)),
		)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func flightKey(k cacheKey) string {
	return k.environmentID + "\x00" + contractName(k.contract)
}
