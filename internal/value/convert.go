package value

import (
	"encoding/json"
	"math"
	"strconv"
)

// toInt64 accepts any Go integer, an integral float (JSON and Lua numbers)
// or a json.Number.
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case json.Number:
		n, err := val.Int64()
		return n, err == nil
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// toDecimal renders numeric input as decimal text. Strings must parse as a
// number and are passed through untouched.
func toDecimal(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return "", false
		}
		return val, true
	case json.Number:
		return val.String(), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// toBytes accepts a byte slice or a sequence of small integers.
func toBytes(v any) ([]byte, bool) {
	switch val := v.(type) {
	case []byte:
		return append([]byte(nil), val...), true
	case []any:
		out := make([]byte, len(val))
		for i, e := range val {
			n, ok := toInt64(e)
			if !ok || n < 0 || n > math.MaxUint8 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	}
	return nil, false
}

func inRange(n, lo, hi int64) bool {
	return n >= lo && n <= hi
}
