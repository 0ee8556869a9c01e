package hooks

import (
	"context"

	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

// UsagePolicyName is the quota policy whose usage ShowQuota reports
const UsagePolicyName = "quota-inbound"

var _ gateway.InboundHandler = ShowQuota

// ShowQuota logs the usage of the quota-inbound policy for the request's
// subject and forwards the request unchanged
func ShowQuota(ctx context.Context, req *gateway.Request, hc *gateway.Context, _ any, _ string) (*gateway.Request, error) {
	log := logger(hc)

	usage, err := hc.QuotaUsage(ctx, UsagePolicyName, subject(req))
	if err != nil {
		log.Info("Quota usage:", zap.String("policy", UsagePolicyName), zap.NamedError("usage_error", err))
		return req, nil
	}

	log.Info("Quota usage:", zap.String("policy", UsagePolicyName), zap.Any("usage", usage))
	return req, nil
}
