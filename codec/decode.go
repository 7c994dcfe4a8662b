package codec

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Type names accepted by Convert.
const (
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeBool     = "bool"
	TypeString   = "str"
	TypeList     = "list"
	TypeTuple    = "tuple"
	TypeDict     = "dict"
	TypeJSON     = "json"
	TypeDatetime = TagDatetime
)

// ConverterFunc is a caller-supplied coercion for a custom type name.
// Custom conversions bypass the runtime type check.
type ConverterFunc func(value any) (any, error)

// Decoder converts caller-supplied primitive representations into declared
// target types, optionally unwrapping tagged envelopes first.
type Decoder struct {
	// Aliases maps envelope tags onto declared type names before
	// recursive conversion.
	Aliases map[string]string
	// Converters maps custom type names onto caller-supplied coercions.
	Converters map[string]ConverterFunc
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Convert coerces raw into the declared type. Envelopes are unwrapped
// through the alias table and converted recursively by tag. Untagged string
// values go through the primitive coercion table; the result must match the
// declared type name unless a custom converter was supplied.
func (d *Decoder) Convert(raw any, typeName string) (any, error) {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return raw, nil
	}

	if envelope, ok := AsEnvelope(raw); ok {
		tag := envelope.Tag
		if d != nil {
			if alias, ok := d.Aliases[tag]; ok {
				tag = alias
			}
		}
		return d.Convert(envelope.Value, tag)
	}

	if d != nil {
		if converter, ok := d.Converters[typeName]; ok && converter != nil {
			converted, err := converter(raw)
			if err != nil {
				return nil, convertError(err, typeName)
			}
			return converted, nil
		}
	}

	value, err := coerce(raw, typeName)
	if err != nil {
		return nil, err
	}
	if value == nil || typeName == TypeJSON {
		return value, nil
	}
	if actual := runtimeTypeName(value); !typeNamesMatch(typeName, actual) {
		return nil, typeMismatchError(typeName, value)
	}
	return value, nil
}

func coerce(raw any, typeName string) (any, error) {
	switch value := raw.(type) {
	case string:
		return coerceString(value, typeName)
	case int:
		if typeName == TypeDatetime {
			return epochToTime(float64(value)), nil
		}
	case int64:
		if typeName == TypeDatetime {
			return epochToTime(float64(value)), nil
		}
	case float64:
		switch typeName {
		case TypeDatetime:
			return epochToTime(value), nil
		case TypeInt:
			// JSON numbers always decode as float64, even integers.
			if value == math.Trunc(value) {
				return int(value), nil
			}
		}
	}
	return raw, nil
}

func coerceString(value string, typeName string) (any, error) {
	switch typeName {
	case TypeInt:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, convertError(err, typeName)
		}
		return parsed, nil
	case TypeFloat:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, convertError(err, typeName)
		}
		return parsed, nil
	case TypeBool:
		return parseBool(value), nil
	case TypeDatetime:
		return parseDatetime(value, typeName)
	case TypeList:
		var decoded []any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			// Not a JSON sequence: wrap the scalar as a singleton.
			return []any{value}, nil
		}
		return decoded, nil
	case TypeTuple:
		return []any{value}, nil
	case TypeDict:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return nil, convertError(err, typeName)
		}
		return decoded, nil
	case TypeJSON:
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return value, nil
		}
		return decoded, nil
	}
	return value, nil
}

// Recognized truthy tokens for boolean coercion.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// parseDatetime accepts ISO-8601 first, then an epoch-seconds number.
func parseDatetime(value string, typeName string) (any, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed, nil
	}
	epoch, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, convertError(err, typeName)
	}
	return epochToTime(epoch), nil
}

func epochToTime(epoch float64) time.Time {
	seconds, fraction := math.Modf(epoch)
	return time.Unix(int64(seconds), int64(fraction*float64(time.Second))).UTC()
}

func typeNamesMatch(declared string, actual string) bool {
	if declared == actual {
		return true
	}
	// Go has no tuple type; a declared tuple is carried as a list.
	return declared == TypeTuple && actual == TypeList
}

func runtimeTypeName(value any) string {
	switch value.(type) {
	case nil:
		return ""
	case bool:
		return TypeBool
	case string:
		return TypeString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case time.Time:
		return TypeDatetime
	}

	kind := reflect.TypeOf(value).Kind()
	switch kind {
	case reflect.Slice, reflect.Array:
		return TypeList
	case reflect.Map:
		return TypeDict
	}
	return reflect.TypeOf(value).String()
}
