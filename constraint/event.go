package constraint

// EventType identifies a notification raised by a constraint during Commit
type EventType int

const (
	// EventLimitLower fires on the step a limited coordinate reaches its lower bound
	EventLimitLower EventType = iota
	// EventLimitUpper fires on the step a limited coordinate reaches its upper bound
	EventLimitUpper
	// EventImpulseLimit fires when a joint needed more than its MaxImpulse
	EventImpulseLimit
)

func (t EventType) String() string {
	switch t {
	case EventLimitLower:
		return "limit_lower"
	case EventLimitUpper:
		return "limit_upper"
	case EventImpulseLimit:
		return "impulse_limit"
	}
	return "unknown"
}

// Event is fire-and-forget, nothing is expected back from the listener
type Event struct {
	Type       EventType
	Constraint Constraint
	// Value is the limited coordinate for limit events, the impulse magnitude otherwise
	Value float64
}
