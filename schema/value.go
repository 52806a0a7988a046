package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Storage formats for date and datetime columns.
const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = time.RFC3339Nano
)

// EncodeValue coerces v into the driver-bindable representation of the
// given data type. JSON, Object and Array values are serialized to text;
// dates are normalized to their storage string form. A nil value passes
// through as SQL NULL regardless of type.
func EncodeValue(t DataType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeInteger:
		return encodeInt(v)
	case TypeReal, TypeNumber:
		return encodeFloat(v)
	case TypeText:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
		return nil, fmt.Errorf("cannot encode %T as text", v)
	case TypeBlob:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot encode %T as blob", v)
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot encode %T as bool", v)
	case TypeDate:
		return encodeTime(v, dateFormat)
	case TypeDateTime:
		return encodeTime(v, dateTimeFormat)
	case TypeJSON, TypeObject, TypeArray:
		return encodeSerialized(t, v)
	default:
		return nil, fmt.Errorf("cannot encode values of type %s", t)
	}
}

// DecodeValue converts a value scanned from the engine back into the
// application representation of the given data type. It is the inverse of
// EncodeValue for every value EncodeValue accepts.
func DecodeValue(t DataType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch t {
	case TypeInteger:
		return encodeInt(raw)
	case TypeReal, TypeNumber:
		return encodeFloat(raw)
	case TypeText:
		return decodeString(raw)
	case TypeBlob:
		switch raw := raw.(type) {
		case []byte:
			return raw, nil
		case string:
			return []byte(raw), nil
		}
		return nil, fmt.Errorf("cannot decode %T as blob", raw)
	case TypeBool:
		switch raw := raw.(type) {
		case bool:
			return raw, nil
		case int64:
			return raw != 0, nil
		}
		return nil, fmt.Errorf("cannot decode %T as bool", raw)
	case TypeDate:
		return decodeTime(raw, dateFormat)
	case TypeDateTime:
		return decodeTime(raw, dateTimeFormat)
	case TypeJSON, TypeObject, TypeArray:
		s, err := decodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot decode %T as %s", raw, t)
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot decode values of type %s", t)
	}
}

func encodeInt(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, fmt.Errorf("integer value %d overflows", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("cannot encode non-integral %v as integer", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot encode %T as integer", v)
}

func encodeFloat(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("cannot encode %T as real", v)
}

func encodeTime(v any, layout string) (string, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UTC().Format(layout), nil
	case string:
		// Accept pre-formatted values, but insist they parse.
		if _, err := time.Parse(layout, v); err != nil {
			return "", err
		}
		return v, nil
	}
	return "", fmt.Errorf("cannot encode %T as date/time", v)
}

func decodeTime(raw any, layout string) (time.Time, error) {
	switch raw := raw.(type) {
	case time.Time:
		return raw, nil
	case string:
		return time.Parse(layout, raw)
	case []byte:
		return time.Parse(layout, string(raw))
	}
	return time.Time{}, fmt.Errorf("cannot decode %T as date/time", raw)
}

func decodeString(raw any) (string, error) {
	switch raw := raw.(type) {
	case string:
		return raw, nil
	case []byte:
		return string(raw), nil
	}
	return "", fmt.Errorf("cannot decode %T as text", raw)
}

func encodeSerialized(t DataType, v any) (string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch t {
	case TypeArray:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return "", fmt.Errorf("cannot encode %T as array", v)
		}
	case TypeObject:
		if rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct {
			return "", fmt.Errorf("cannot encode %T as object", v)
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
