package di

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/definition"
)

// applyProperties sets props on instance. A component.PropertySetter receives
// every property; otherwise instance must be a pointer to a struct and each
// property is matched to an exported field by its `inject:"name"` tag, then
// by case-insensitive field name.
func applyProperties(instance any, props definition.Properties) error {
	if ps, ok := instance.(component.PropertySetter); ok {
		for _, pv := range props {
			if err := ps.SetProperty(pv.Name, pv.Value); err != nil {
				return fmt.Errorf("property '%s': %w", pv.Name, err)
			}
		}
		return nil
	}

	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("cannot apply properties to %T: need a pointer to a struct or a PropertySetter", instance)
	}
	target := v.Elem()
	for _, pv := range props {
		field, ok := findField(target, pv.Name)
		if !ok {
			return fmt.Errorf("property '%s': no exported field on %T", pv.Name, instance)
		}
		if err := setField(field, pv.Value); err != nil {
			return fmt.Errorf("property '%s': %w", pv.Name, err)
		}
	}
	return nil
}

func findField(s reflect.Value, name string) (reflect.Value, bool) {
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && f.Tag.Get("inject") == name {
			return s.Field(i), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && f.Tag.Get("inject") == "" && strings.EqualFold(f.Name, name) {
			return s.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setField(field reflect.Value, value any) error {
	if value == nil {
		field.SetZero()
		return nil
	}
	rv := reflect.ValueOf(value)
	ft := field.Type()
	switch {
	case rv.Type().AssignableTo(ft):
		field.Set(rv)
	case convertible(rv.Type(), ft):
		field.Set(rv.Convert(ft))
	default:
		return fmt.Errorf("cannot assign %s to field of type %s", rv.Type(), ft)
	}
	return nil
}

// convertible allows numeric-to-numeric and string-to-string conversions
// only, so an int never silently becomes a rune string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	return (isNumeric(from) && isNumeric(to)) ||
		(from.Kind() == reflect.String && to.Kind() == reflect.String)
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// sameInstance reports whether a and b are the same object. Values of
// uncomparable types are compared by their underlying pointer.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}
