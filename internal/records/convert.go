package records

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-translatable/internal/values"
)

var (
	valuesType    = reflect.TypeOf(values.Values{})
	rawJSONType   = reflect.TypeOf(json.RawMessage(nil))
	bytesType     = reflect.TypeOf([]byte(nil))
	stringMapType = reflect.TypeOf(map[string]string(nil))
	anyMapType    = reflect.TypeOf(map[string]any(nil))
)

// Supports reports whether Convert can produce a value of typ.
func Supports(typ reflect.Type) bool {
	switch typ {
	case valuesType, rawJSONType, bytesType, stringMapType, anyMapType:
		return true
	}
	if typ.Kind() == reflect.String {
		return true
	}
	if typ.Kind() == reflect.Pointer {
		return Supports(typ.Elem())
	}
	return false
}

// EncodesAsJSONString reports whether bun would marshal a json-tagged field
// of typ into a JSON string (or base64 string) rather than store the document
// as is. Such fields cannot back a translated json column.
func EncodesAsJSONString(typ reflect.Type) bool {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == rawJSONType {
		return false
	}
	return typ == bytesType || typ.Kind() == reflect.String
}

// Convert turns an encoded mapping (values.Values or a JSON string) into a
// value assignable to typ.
func Convert(raw any, typ reflect.Type) (reflect.Value, error) {
	if typ.Kind() == reflect.Pointer {
		if raw == nil {
			return reflect.Zero(typ), nil
		}
		inner, err := Convert(raw, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	}

	mapping, text, err := split(raw)
	if err != nil {
		return reflect.Value{}, err
	}

	switch typ {
	case valuesType:
		return reflect.ValueOf(mapping), nil
	case stringMapType:
		return reflect.ValueOf(mapping.Map()), nil
	case anyMapType:
		out := make(map[string]any, mapping.Len())
		for key, value := range mapping.Map() {
			out[key] = value
		}
		return reflect.ValueOf(out), nil
	case rawJSONType:
		return reflect.ValueOf(json.RawMessage(text)), nil
	case bytesType:
		return reflect.ValueOf([]byte(text)), nil
	}
	if typ.Kind() == reflect.String {
		return reflect.ValueOf(text).Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported field type %s", typ)
}

// split yields both the structured and the encoded form of raw.
func split(raw any) (values.Values, string, error) {
	switch data := raw.(type) {
	case nil:
		return values.Values{}, "{}", nil
	case values.Values:
		return data, string(data.Encode()), nil
	case string:
		parsed, _ := values.Parse([]byte(data))
		return parsed, data, nil
	case []byte:
		parsed, _ := values.Parse(data)
		return parsed, string(data), nil
	default:
		return values.Values{}, "", fmt.Errorf("unsupported raw value %T", raw)
	}
}
