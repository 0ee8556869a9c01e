package hooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestContext returns a host context whose log entries are captured
func newTestContext(t *testing.T, quotas gateway.QuotaEngine) (*gateway.Context, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rt := gateway.NewRuntime(zap.New(core), quotas)
	return rt.NewContext("req-1"), logs
}

func newTestRequest(user *gateway.User) *gateway.Request {
	return gateway.NewRequest(httptest.NewRequest(http.MethodGet, "/test", nil), user)
}

func TestGetQuotaDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("returns subject and quota", func(t *testing.T) {
		user := &gateway.User{Sub: "user-123", Data: map[string]any{"quota": float64(1000)}}
		hc, logs := newTestContext(t, nil)

		outcome := GetQuotaDetail(ctx, newTestRequest(user), hc, "quota-inbound")

		detail, ok := outcome.Directive()
		require.True(t, ok)
		assert.Equal(t, gateway.QuotaDetail{
			Key:        "user-123",
			Allowances: gateway.QuotaAllowances{Requests: 1000},
		}, detail)
		assert.NoError(t, outcome.Reason())
		assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})

	t.Run("accepts json.Number and integer quotas", func(t *testing.T) {
		for _, quota := range []any{json.Number("250"), 250, int64(250), uint32(250)} {
			user := &gateway.User{Sub: "s", Data: map[string]any{"quota": quota}}
			hc, _ := newTestContext(t, nil)

			detail, ok := GetQuotaDetail(ctx, newTestRequest(user), hc, "q").Directive()
			require.True(t, ok, "quota %T", quota)
			assert.Equal(t, float64(250), detail.Allowances.Requests)
		}
	})

	t.Run("negative quota passes through unchecked", func(t *testing.T) {
		user := &gateway.User{Sub: "s", Data: map[string]any{"quota": float64(-5)}}
		hc, _ := newTestContext(t, nil)

		detail, ok := GetQuotaDetail(ctx, newTestRequest(user), hc, "q").Directive()
		require.True(t, ok)
		assert.Equal(t, float64(-5), detail.Allowances.Requests)
	})

	missing := []struct {
		name string
		req  *gateway.Request
	}{
		{name: "nil request", req: nil},
		{name: "no user", req: newTestRequest(nil)},
		{name: "no data", req: newTestRequest(&gateway.User{Sub: "s"})},
		{name: "no quota", req: newTestRequest(&gateway.User{Sub: "s", Data: map[string]any{"rate_limit": map[string]any{}}})},
		{name: "null quota", req: newTestRequest(&gateway.User{Sub: "s", Data: map[string]any{"quota": nil}})},
		{name: "zero quota", req: newTestRequest(&gateway.User{Sub: "s", Data: map[string]any{"quota": float64(0)}})},
		{name: "string quota", req: newTestRequest(&gateway.User{Sub: "s", Data: map[string]any{"quota": "100"}})},
	}

	for _, tt := range missing {
		t.Run(tt.name+" is inapplicable with one diagnostic", func(t *testing.T) {
			hc, logs := newTestContext(t, nil)

			outcome := GetQuotaDetail(ctx, tt.req, hc, "quota-inbound")

			assert.False(t, outcome.IsApplicable())
			assert.ErrorIs(t, outcome.Reason(), ErrMissingQuota)

			errs := logs.FilterLevelExact(zapcore.ErrorLevel)
			require.Equal(t, 1, errs.Len())
			assert.Equal(t, "missing quota data in bearer token", errs.All()[0].Message)
		})
	}

	t.Run("nil host context does not panic", func(t *testing.T) {
		outcome := GetQuotaDetail(ctx, newTestRequest(nil), nil, "q")
		assert.False(t, outcome.IsApplicable())
	})

	t.Run("idempotent", func(t *testing.T) {
		user := &gateway.User{Sub: "user-9", Data: map[string]any{"quota": float64(42)}}
		hc, _ := newTestContext(t, nil)
		req := newTestRequest(user)

		first := GetQuotaDetail(ctx, req, hc, "q")
		second := GetQuotaDetail(ctx, req, hc, "q")
		assert.Equal(t, first, second)
	})
}
