package hooks

import (
	"context"

	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

var _ gateway.QuotaDetailFunc = GetQuotaDetail

// GetQuotaDetail resolves the quota directive for the authenticated caller.
// The subject is the quota key and user.data.quota the request allowance.
//
// A missing, zero or non-numeric quota makes the policy inapplicable. The
// allowance is passed through without range checks.
func GetQuotaDetail(_ context.Context, req *gateway.Request, hc *gateway.Context, policyName string) gateway.Outcome[gateway.QuotaDetail] {
	quota, ok := asNumber(userData(req)[dataKeyQuota])
	if !ok || quota == 0 {
		logger(hc).Error(ErrMissingQuota.Error(), zap.String("policy", policyName))
		return gateway.Inapplicable[gateway.QuotaDetail](ErrMissingQuota)
	}

	return gateway.Applicable(gateway.QuotaDetail{
		Key: req.User.Sub,
		Allowances: gateway.QuotaAllowances{
			Requests: quota,
		},
	})
}
