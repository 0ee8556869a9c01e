package hooks

import (
	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

const secondsPerMinute = 60

var _ gateway.RateLimitKeyFunc = RateLimitKey

// RateLimitKey resolves the rate-limit directive for the authenticated caller
// from user.data.rate_limit. The window is given in seconds and returned in
// minutes.
//
// Checks run in a fixed order and stop at the first failure:
// rate_limit presence, window, limit, subject.
func RateLimitKey(req *gateway.Request, hc *gateway.Context) gateway.Outcome[gateway.RateLimitDetails] {
	log := logger(hc)

	var user *gateway.User
	if req != nil {
		user = req.User
	}
	log.Info("rate limit key requested", zap.Any("user", user))

	rateLimit, err := parseRateLimit(userData(req)[dataKeyRateLimit])
	if err != nil {
		return reject(log, err)
	}

	// sub is either the API key or the JWT subject, depending on how the caller authenticated
	if user.Sub == "" {
		return reject(log, ErrMissingSubject)
	}

	return gateway.Applicable(gateway.RateLimitDetails{
		Key:               user.Sub,
		RequestsAllowed:   rateLimit.Limit,
		TimeWindowMinutes: rateLimit.Window / secondsPerMinute,
	})
}

func reject(log *zap.Logger, reason error) gateway.Outcome[gateway.RateLimitDetails] {
	log.Error(reason.Error())
	return gateway.Inapplicable[gateway.RateLimitDetails](reason)
}
