package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Output coercion of the builtin scalars. Values coming from the row producer
// are JSON decoded with numbers kept as json.Number, so each coercion accepts
// those alongside native Go values.

func serializeString(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprint(v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		// Composite values render as their JSON text.
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("String cannot represent %T: %w", v, err)
		}
		return string(b), nil
	}
}

func serializeInt(v any) (any, error) {
	var f float64
	switch v := v.(type) {
	case int:
		f = float64(v)
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return v, nil
		}
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		f = float64(v)
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v), nil
		}
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint:
		f = float64(v)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return serializeInt(i)
		}
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent %q", v.String())
		}
		f = n
	case float32:
		f = float64(v)
	case float64:
		f = v
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent %q", v)
		}
		f = n
	default:
		return nil, fmt.Errorf("Int cannot represent %T", v)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer %v", v)
	}
	return int(f), nil
}

func serializeFloat(v any) (any, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("Float cannot represent %q", v.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("Float cannot represent %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("Float cannot represent %T", v)
	}
}

func serializeBoolean(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("Boolean cannot represent %q", v.String())
		}
		return f != 0, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return nil, fmt.Errorf("Boolean cannot represent %T", v)
	}
}
