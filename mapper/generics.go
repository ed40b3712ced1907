package mapper

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type identity of T. For interface types this is
// the interface type itself, not a concrete implementation.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register installs the adapter constructor for contract M.
func Register[M any](r *Resolver, factory func(d *Dispatcher) M) {
	r.RegisterContract(TypeOf[M](), func(d *Dispatcher) any {
		return factory(d)
	})
}

// Bind associates record type R with contract M.
func Bind[R any, M any](r *Resolver) {
	r.BindRecordType(TypeOf[R](), TypeOf[M]())
}

// For returns the proxy for contract M under the default environment.
func For[M any](r *Resolver) (M, error) {
	return ForEnvironment[M](r, "")
}

// ForEnvironment returns the proxy for contract M under the named
// environment.
func ForEnvironment[M any](r *Resolver, environmentID string) (M, error) {
	var zero M
	proxy, err := r.MapperForContract(TypeOf[M](), environmentID)
	if err != nil {
		return zero, err
	}
	m, ok := proxy.(M)
	if !ok {
		return zero, fmt.Errorf("proxy %T does not implement contract %s", proxy, contractName(TypeOf[M]()))
	}
	return m, nil
}

// ForRecord returns the proxy for the contract bound to record type R, under
// the default environment. The caller asserts the result to the contract
// interface; use For when the contract type is known statically.
func ForRecord[R any](r *Resolver) (any, error) {
	return r.MapperForRecord(TypeOf[R]())
}
