// Package gateway defines the extension-point contract between the API
// gateway host and its policy hooks.
//
// The host authenticates the request, builds a Request and a per-request
// Context, and invokes hooks at fixed extension points:
//   - quota detail (QuotaDetailFunc) for the quota policy
//   - rate-limit key (RateLimitKeyFunc) for the rate-limit policy
//   - inbound processing (InboundHandler) before forwarding upstream
//   - startup (RuntimeInitFunc) to register plugins
//
// Resolvers never fail: they return an Outcome that is either Applicable with
// a directive or Inapplicable with a reason. Enforcement, counters and log
// shipping belong to the host.
package gateway
