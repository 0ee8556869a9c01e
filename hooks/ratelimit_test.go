package hooks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap/zapcore"
)

func rateLimitUser(sub string, window, limit any) *gateway.User {
	return &gateway.User{
		Sub: sub,
		Data: map[string]any{
			"rate_limit": map[string]any{"window": window, "limit": limit},
		},
	}
}

func withRateLimit(v any) *gateway.User {
	return &gateway.User{Sub: "u1", Data: map[string]any{"rate_limit": v}}
}

func TestRateLimitKey(t *testing.T) {
	t.Run("converts window seconds to minutes", func(t *testing.T) {
		user := rateLimitUser("u1", float64(120), float64(10))
		hc, logs := newTestContext(t, nil)

		outcome := RateLimitKey(newTestRequest(user), hc)

		details, ok := outcome.Directive()
		require.True(t, ok)
		assert.Equal(t, gateway.RateLimitDetails{
			Key:               "u1",
			RequestsAllowed:   10,
			TimeWindowMinutes: 2,
		}, details)
		assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})

	t.Run("accepts non-integer positive values", func(t *testing.T) {
		user := rateLimitUser("u2", 90, 2.5)
		hc, _ := newTestContext(t, nil)

		details, ok := RateLimitKey(newTestRequest(user), hc).Directive()
		require.True(t, ok)
		assert.Equal(t, 2.5, details.RequestsAllowed)
		assert.Equal(t, 1.5, details.TimeWindowMinutes)
	})

	t.Run("logs the incoming user", func(t *testing.T) {
		user := rateLimitUser("u1", float64(60), float64(1))
		hc, logs := newTestContext(t, nil)

		RateLimitKey(newTestRequest(user), hc)

		assert.Equal(t, 1, logs.FilterMessage("rate limit key requested").Len())
	})

	tests := []struct {
		name    string
		user    *gateway.User
		wantErr error
	}{
		{name: "no user", user: nil, wantErr: ErrMissingRateLimit},
		{name: "no data", user: &gateway.User{Sub: "u1"}, wantErr: ErrMissingRateLimit},
		{name: "no rate_limit", user: &gateway.User{Sub: "u1", Data: map[string]any{"quota": float64(5)}}, wantErr: ErrMissingRateLimit},
		{name: "null rate_limit", user: withRateLimit(nil), wantErr: ErrMissingRateLimit},
		{name: "false rate_limit", user: withRateLimit(false), wantErr: ErrMissingRateLimit},
		{name: "zero rate_limit", user: withRateLimit(float64(0)), wantErr: ErrMissingRateLimit},
		{name: "empty string rate_limit", user: withRateLimit(""), wantErr: ErrMissingRateLimit},
		{name: "string rate_limit has no window", user: withRateLimit("10/min"), wantErr: ErrInvalidWindow},
		{name: "array rate_limit has no window", user: withRateLimit([]any{float64(60), float64(10)}), wantErr: ErrInvalidWindow},
		{name: "true rate_limit has no window", user: withRateLimit(true), wantErr: ErrInvalidWindow},
		{name: "numeric rate_limit has no window", user: withRateLimit(float64(5)), wantErr: ErrInvalidWindow},
		{name: "empty rate_limit object", user: withRateLimit(map[string]any{}), wantErr: ErrInvalidWindow},
		{name: "zero window", user: rateLimitUser("u1", float64(0), float64(10)), wantErr: ErrInvalidWindow},
		{name: "negative window", user: rateLimitUser("u1", float64(-60), float64(10)), wantErr: ErrInvalidWindow},
		{name: "string window", user: rateLimitUser("u1", "60", float64(10)), wantErr: ErrInvalidWindow},
		{name: "missing window", user: rateLimitUser("u1", nil, float64(10)), wantErr: ErrInvalidWindow},
		{name: "NaN window", user: rateLimitUser("u1", math.NaN(), float64(10)), wantErr: ErrInvalidWindow},
		{name: "zero limit", user: rateLimitUser("u1", float64(60), float64(0)), wantErr: ErrInvalidLimit},
		{name: "negative limit", user: rateLimitUser("u1", float64(60), float64(-1)), wantErr: ErrInvalidLimit},
		{name: "bool limit", user: rateLimitUser("u1", float64(60), true), wantErr: ErrInvalidLimit},
		{name: "invalid window and limit reports window", user: rateLimitUser("u1", float64(0), float64(0)), wantErr: ErrInvalidWindow},
		{name: "missing sub with valid limits", user: rateLimitUser("", float64(60), float64(10)), wantErr: ErrMissingSubject},
		{name: "invalid limit and missing sub reports limit", user: rateLimitUser("", float64(60), float64(0)), wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc, logs := newTestContext(t, nil)

			outcome := RateLimitKey(newTestRequest(tt.user), hc)

			assert.False(t, outcome.IsApplicable())
			assert.ErrorIs(t, outcome.Reason(), tt.wantErr)

			_, ok := outcome.Directive()
			assert.False(t, ok)

			errs := logs.FilterLevelExact(zapcore.ErrorLevel)
			require.Equal(t, 1, errs.Len(), "only the first failing check is reported")
			assert.Equal(t, tt.wantErr.Error(), errs.All()[0].Message)
		})
	}

	t.Run("nil request and context", func(t *testing.T) {
		outcome := RateLimitKey(nil, nil)
		assert.ErrorIs(t, outcome.Reason(), ErrMissingRateLimit)
	})

	t.Run("idempotent", func(t *testing.T) {
		user := rateLimitUser("u1", float64(300), float64(50))
		hc, _ := newTestContext(t, nil)
		req := newTestRequest(user)

		assert.Equal(t, RateLimitKey(req, hc), RateLimitKey(req, hc))
	})
}
