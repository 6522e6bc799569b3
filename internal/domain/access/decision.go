package access

import "omnicrm/internal/core/apperror"

// Decision is the outcome of one authorization check. It is a value,
// never an error: denial is a normal return propagated unchanged to
// the transport boundary. The error code is a stable machine token;
// localization happens only at the presentation layer.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Required  Key    `json:"requiredPermission,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// Authorize decides whether the effective set permits the required
// key. An empty required key means the operation is unguarded and is
// always allowed, including for principals with zero permissions.
func Authorize(set Set, required Key) Decision {
	if required == "" {
		return Decision{Allowed: true}
	}
	if set.Has(required) {
		return Decision{Allowed: true, Required: required}
	}
	return Decision{
		Allowed:   false,
		Required:  required,
		ErrorCode: apperror.CodeInsufficientPermissions,
	}
}
