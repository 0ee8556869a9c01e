package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

func TestInbound(t *testing.T) {
	rt := gateway.NewRuntime(zap.NewNop(), nil)
	user := &gateway.User{Sub: "user-1"}

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		ctx := WithRequestID(req.Context(), "req-9")
		return req.WithContext(WithUser(ctx, user))
	}

	t.Run("passes host context and forwards the returned request", func(t *testing.T) {
		var gotPolicy string
		var gotOptions any
		var gotCtx *gateway.Context
		policy := func(ctx context.Context, req *gateway.Request, hc *gateway.Context, options any, policyName string) (*gateway.Request, error) {
			gotPolicy, gotOptions, gotCtx = policyName, options, hc
			assert.Same(t, user, req.User)
			return req, nil
		}

		var forwarded *http.Request
		handler := Inbound(rt, policy, map[string]string{"k": "v"}, "show-quota")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				forwarded = r
				w.WriteHeader(http.StatusAccepted)
			}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "show-quota", gotPolicy)
		assert.Equal(t, map[string]string{"k": "v"}, gotOptions)
		require.NotNil(t, gotCtx)
		assert.Equal(t, "req-9", gotCtx.RequestID)
		require.NotNil(t, forwarded)
		assert.Equal(t, "/orders", forwarded.URL.Path)
		assert.Same(t, user, GetUserFromContext(forwarded.Context()))
	})

	t.Run("policy error returns 500", func(t *testing.T) {
		policy := func(context.Context, *gateway.Request, *gateway.Context, any, string) (*gateway.Request, error) {
			return nil, errors.New("boom")
		}
		handler := Inbound(rt, policy, nil, "p")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("nil request returns 500", func(t *testing.T) {
		policy := func(context.Context, *gateway.Request, *gateway.Context, any, string) (*gateway.Request, error) {
			return nil, nil
		}
		handler := Inbound(rt, policy, nil, "p")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
