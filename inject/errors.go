package inject

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ────────────────────────────────────────────────────────────
//
// All configuration and provisioning failures are typed so callers can
// distinguish them with errors.As. None of them are recovered internally;
// they propagate out of New, Get and Provider calls.

// DuplicateBindingError reports two explicit bindings for the same Key.
// It is fatal at injector construction time.
type DuplicateBindingError struct {
	Key Key
}

func (e *DuplicateBindingError) Error() string {
	return "inject: duplicate binding for " + e.Key.String()
}

// MissingBindingError reports a Key with no explicit, linked, or
// synthesizable binding.
type MissingBindingError struct {
	Key    Key
	Reason string
}

func (e *MissingBindingError) Error() string {
	if e.Reason == "" {
		return "inject: no binding for " + e.Key.String()
	}
	return "inject: no binding for " + e.Key.String() + ": " + e.Reason
}

// CircularDependencyError reports a constructor-parameter cycle.
// Cycle holds the keys in dependency order; the last entry depends on the
// first.
type CircularDependencyError struct {
	Cycle []Key
}

func (e *CircularDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return "inject: circular dependency"
	}
	return "inject: circular dependency: " + joinKeys(e.Cycle, " -> ") +
		" -> " + e.Cycle[0].String()
}

// ProvisioningError wraps a failure raised by user-supplied provider or
// constructor code. Chain holds the dependency path that led to the failing
// Key, outermost request first.
type ProvisioningError struct {
	Key   Key
	Chain []Key
	Cause error
}

func (e *ProvisioningError) Error() string {
	msg := "inject: provisioning " + e.Key.String() + " failed"
	if len(e.Chain) > 1 {
		msg += " (via " + joinKeys(e.Chain, " -> ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the user code failure to errors.Is / errors.As.
func (e *ProvisioningError) Unwrap() error { return e.Cause }

// ConfigurationError aggregates every problem found while building an
// injector, so a caller sees all of them at once instead of one per run.
type ConfigurationError struct {
	Errors []error
}

func (e *ConfigurationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "inject: configuration failed"
	case 1:
		return fmt.Sprintf("inject: configuration failed: %v", e.Errors[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "inject: configuration failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %v\n", i+1, err)
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (e *ConfigurationError) Unwrap() []error { return e.Errors }

func joinKeys(keys []Key, sep string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, sep)
}
