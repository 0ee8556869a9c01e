package gateway

import (
	"net/http"
	"time"
)

// User represents the authenticated caller attached to a request by the
// upstream authentication step
type User struct {
	Sub  string         `json:"sub"`  // API key or JWT subject
	Data map[string]any `json:"data"` // Application-defined payload (quota, rate_limit)
}

// Request is the request handed to policy hooks
type Request struct {
	HTTP *http.Request
	User *User
}

// NewRequest wraps an HTTP request together with its authenticated user.
// user may be nil when the request was not authenticated.
func NewRequest(r *http.Request, user *User) *Request {
	return &Request{HTTP: r, User: user}
}

// QuotaAllowances holds the allowance values of a quota directive
type QuotaAllowances struct {
	Requests float64 `json:"requests"`
}

// QuotaDetail is the directive returned to the host's quota policy
type QuotaDetail struct {
	Key        string          `json:"key"`
	Allowances QuotaAllowances `json:"allowances"`
}

// RateLimitDetails is the directive returned to the host's rate-limit policy
type RateLimitDetails struct {
	Key               string  `json:"key"`
	RequestsAllowed   float64 `json:"requestsAllowed"`
	TimeWindowMinutes float64 `json:"timeWindowMinutes"`
}

// QuotaUsage reports how much of a quota a key has consumed in the current period
type QuotaUsage struct {
	Policy  string    `json:"policy"`
	Key     string    `json:"key"`
	Used    int64     `json:"used"`
	ResetAt time.Time `json:"resetAt,omitzero"`
}
