package hooks

import "errors"

var (
	// ErrMissingQuota is returned when the user carries no quota allowance
	ErrMissingQuota = errors.New("missing quota data in bearer token")

	// ErrMissingRateLimit is returned when the user carries no rate_limit object
	ErrMissingRateLimit = errors.New("missing rate_limit data in bearer token")

	// ErrInvalidWindow is returned when rate_limit.window is not a positive number
	ErrInvalidWindow = errors.New("invalid rate_limit window value")

	// ErrInvalidLimit is returned when rate_limit.limit is not a positive number
	ErrInvalidLimit = errors.New("invalid rate_limit limit value")

	// ErrMissingSubject is returned when the user has no sub
	ErrMissingSubject = errors.New("missing sub bearer token")
)
