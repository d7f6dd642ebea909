package definition

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// Constructor adapts an ordinary Go constructor into a Factory.
//
// Supported shapes:
//
//	func() T
//	func() (T, error)
//	func(context.Context) (T, error)
//	func(Resolver) (T, error)
//	func(context.Context, Resolver) (T, error)
//
// A single-result form is accepted for every parameter list. A value that is
// not a supported function yields a factory that always fails.
func Constructor(fn any) Factory {
	v := reflect.ValueOf(fn)
	if err := checkConstructor(v); err != nil {
		return func(context.Context, Resolver) (any, error) {
			return nil, err
		}
	}

	fnType := v.Type()
	return func(ctx context.Context, r Resolver) (any, error) {
		args := make([]reflect.Value, fnType.NumIn())
		for i := range args {
			switch fnType.In(i) {
			case contextType:
				args[i] = reflect.ValueOf(&ctx).Elem()
			case resolverType:
				args[i] = reflect.ValueOf(&r).Elem()
			}
		}
		return constructorResults(v.Call(args))
	}
}

// Instance returns a factory that hands out a pre-built object.
func Instance(v any) Factory {
	return func(context.Context, Resolver) (any, error) {
		return v, nil
	}
}

// ResultType returns the instance type a constructor produces, nil if fn is
// not a supported constructor.
func ResultType(fn any) reflect.Type {
	v := reflect.ValueOf(fn)
	if checkConstructor(v) != nil {
		return nil
	}
	return v.Type().Out(0)
}

func checkConstructor(v reflect.Value) error {
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("constructor must be a function, got %s", v.Kind())
	}

	fnType := v.Type()
	if fnType.IsVariadic() {
		return fmt.Errorf("constructor must not be variadic")
	}
	if fnType.NumIn() > 2 {
		return fmt.Errorf("constructor takes at most (context.Context, Resolver), got %d parameters", fnType.NumIn())
	}
	seen := make(map[reflect.Type]bool)
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if in != contextType && in != resolverType {
			return fmt.Errorf("unsupported constructor parameter %s", in)
		}
		if seen[in] {
			return fmt.Errorf("duplicate constructor parameter %s", in)
		}
		seen[in] = true
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return fmt.Errorf("second constructor result must be error, got %s", fnType.Out(1))
		}
	default:
		return fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
	return nil
}

func constructorResults(results []reflect.Value) (any, error) {
	instance := results[0].Interface()
	if len(results) == 2 {
		if err, _ := results[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
