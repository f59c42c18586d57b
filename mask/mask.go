// Package mask flattens configuration structs for logging with secrets hidden.
package mask

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	tagName = "mask"

	// Placeholder replaces every non-zero masked value.
	Placeholder = "***"
)

// StructToOrdMap flattens v into dotted keys in field order. Nested structs are
// expanded, fields tagged `mask:"true"` are replaced by Placeholder unless they
// hold the zero value, and fields tagged yaml:"-" or json:"-" are left out.
// Keys come from the yaml tag, then the json tag, then the field name.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}

	om := orderedmap.New[string, any]()
	flatten(om, reflect.ValueOf(v), "")
	return om
}

func flatten(om *orderedmap.OrderedMap[string, any], val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		field, fieldType := val.Field(i), typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		name, skip := fieldName(fieldType)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case strings.EqualFold(fieldType.Tag.Get(tagName), "true"):
			om.Set(name, masked(field))
		case isStruct(field):
			flatten(om, field, name)
		default:
			om.Set(name, field.Interface())
		}
	}
}

func isStruct(val reflect.Value) bool {
	if val.Kind() == reflect.Pointer {
		return !val.IsNil() && val.Elem().Kind() == reflect.Struct
	}
	return val.Kind() == reflect.Struct
}

func masked(val reflect.Value) any {
	if val.IsZero() {
		return val.Interface()
	}
	return Placeholder
}

func fieldName(field reflect.StructField) (string, bool) {
	for _, key := range []string{"yaml", "json"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return field.Name, false
}
