package domain

type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNoRoute              Reason = "no_route"
	ReasonUnauthenticated      Reason = "unauthenticated"
	ReasonInvalidToken         Reason = "invalid_token"
	ReasonValidatorUnavailable Reason = "validator_unavailable"
)

// Identity is the verified caller propagated to upstreams.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type Decision struct {
	Forward  bool
	Reason   Reason
	Route    Route
	Identity *Identity
}

func Reject(reason Reason, route Route) Decision {
	return Decision{Reason: reason, Route: route}
}
