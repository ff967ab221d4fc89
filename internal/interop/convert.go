package interop

import (
	"fmt"
	"reflect"
	"slices"
)

// toSlice copies any slice or array into a []any.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}

	if s, ok := v.([]any); ok {
		return slices.Clone(s), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// toMap copies any map into a map[string]any. Non-string keys are
// formatted with fmt.Sprint.
func toMap(v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}

	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().Interface()

		ks, ok := k.(string)
		if !ok {
			ks = fmt.Sprint(k)
		}

		out[ks] = iter.Value().Interface()
	}

	return out, true
}

func appendItems(base, items []any, unique bool) []any {
	for _, item := range items {
		if unique && slices.ContainsFunc(base, func(e any) bool { return reflect.DeepEqual(e, item) }) {
			continue
		}

		base = append(base, item)
	}

	return base
}

func mergeMaps(base, add map[string]any) map[string]any {
	for k, v := range add {
		base[k] = v
	}

	return base
}

// coerce converts v to type t, element-wise for slices and maps.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if rv.Type().Implements(t) {
			return rv, nil
		}
	case reflect.Slice:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}

		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := range rv.Len() {
			e, err := coerce(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}

			out.Index(i).Set(e)
		}

		return out, nil
	case reflect.Map:
		if rv.Kind() != reflect.Map {
			break
		}

		out := reflect.MakeMapWithSize(t, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			k, err := coerce(iter.Key().Interface(), t.Key())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}

			e, err := coerce(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("value for %v: %w", iter.Key(), err)
			}

			out.SetMapIndex(k, e)
		}

		return out, nil
	case reflect.String:
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer:
		default:
			return reflect.ValueOf(fmt.Sprint(v)).Convert(t), nil
		}
	default:
		if rv.Kind() != reflect.String && rv.Type().ConvertibleTo(t) {
			return rv.Convert(t), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", v, t)
}
