// Package observability builds the structured logger shared by the host
// runtime and the policy hooks.
package observability
