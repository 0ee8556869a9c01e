package hooks

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

// Keys of the application-defined user payload
const (
	dataKeyQuota     = "quota"
	dataKeyRateLimit = "rate_limit"
	rateLimitWindow  = "window"
	rateLimitLimit   = "limit"
)

// userData returns the user's payload, nil when the user or payload is absent
func userData(req *gateway.Request) map[string]any {
	if req == nil || req.User == nil {
		return nil
	}
	return req.User.Data
}

// subject returns the request's user sub, empty when the request is anonymous
func subject(req *gateway.Request) string {
	if req == nil || req.User == nil {
		return ""
	}
	return req.User.Sub
}

// asNumber reports v as a float64 when it holds a numeric value.
// NaN is not treated as a number.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		default:
			return 0, false
		}
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// isFalsy reports whether v is absent or an empty scalar: nil, false, zero,
// NaN or the empty string
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	}
	n, ok := asNumber(v)
	return ok && n == 0
}

// rateLimitData is the typed view of user.data.rate_limit
type rateLimitData struct {
	Window float64 // seconds
	Limit  float64
}

// parseRateLimit reads user.data.rate_limit, checking presence, window and
// limit in that order. A present value that is not an object carries no
// window.
func parseRateLimit(v any) (rateLimitData, error) {
	if isFalsy(v) {
		return rateLimitData{}, ErrMissingRateLimit
	}
	obj, _ := v.(map[string]any)

	window, ok := asNumber(obj[rateLimitWindow])
	if !ok || window <= 0 {
		return rateLimitData{}, ErrInvalidWindow
	}

	limit, ok := asNumber(obj[rateLimitLimit])
	if !ok || limit <= 0 {
		return rateLimitData{}, ErrInvalidLimit
	}

	return rateLimitData{Window: window, Limit: limit}, nil
}

// logger returns the request logger, or a no-op logger when the host gave none
func logger(hc *gateway.Context) *zap.Logger {
	if hc == nil || hc.Log == nil {
		return zap.NewNop()
	}
	return hc.Log
}
