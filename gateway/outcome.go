package gateway

import "errors"

// ErrNoReason is reported by an inapplicable outcome built without a reason
var ErrNoReason = errors.New("policy not applicable")

// Outcome is the result of a resolver hook: either an applicable directive
// or an inapplicable signal carrying the reason.
type Outcome[D any] struct {
	directive  D
	reason     error
	applicable bool
}

// Applicable wraps a directive the host should enforce
func Applicable[D any](directive D) Outcome[D] {
	return Outcome[D]{directive: directive, applicable: true}
}

// Inapplicable signals that the policy does not apply to the request
func Inapplicable[D any](reason error) Outcome[D] {
	if reason == nil {
		reason = ErrNoReason
	}
	return Outcome[D]{reason: reason}
}

// IsApplicable reports whether the outcome carries a directive
func (o Outcome[D]) IsApplicable() bool {
	return o.applicable
}

// Directive returns the directive and true, or the zero value and false
func (o Outcome[D]) Directive() (D, bool) {
	return o.directive, o.applicable
}

// Reason returns why the outcome is inapplicable, nil when applicable
func (o Outcome[D]) Reason() error {
	return o.reason
}
