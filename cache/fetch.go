package cache

import (
	"context"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ValidateFetchFn checks that fetchFn has the shape
// func(context.Context) (T, error) for some T.
func ValidateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}
	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}
	return nil
}

// InvokeFetchFn calls a function matching func(context.Context) (T, error)
// and returns its result erased to any. The caller is expected to have run
// ValidateFetchFn first; invalid functions will panic here.
func InvokeFetchFn(ctx context.Context, fetchFn any) (any, error) {
	// Fast path for the common erased shape.
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if rv := results[0]; rv.IsValid() && rv.CanInterface() {
		result = rv.Interface()
	}

	var err error
	if ev := results[1]; ev.IsValid() && !ev.IsNil() {
		err = ev.Interface().(error)
	}

	return result, err
}

// FetchResultType reports the T in a func(context.Context) (T, error).
// Stores that persist serialized payloads use it to rebuild a typed value
// on a hit. Returns nil when fetchFn does not have the expected shape.
func FetchResultType(fetchFn any) reflect.Type {
	if fetchFn == nil {
		return nil
	}
	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func || fnType.NumOut() != 2 {
		return nil
	}
	return fnType.Out(0)
}
