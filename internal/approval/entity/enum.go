package entity

// State is the position of a workflow in the approval state machine.
type State int8

const (
	StateInitial State = iota
	StateAwaitingOTP
	StateApproved
	StateRejected
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAwaitingOTP:
		return "awaiting_otp"
	case StateApproved:
		return "approved"
	case StateRejected:
		return "rejected"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateApproved || s == StateRejected || s == StateExpired
}

// Decision is the final outcome recorded for a workflow.
type Decision int8

const (
	DecisionNone Decision = iota
	DecisionApproved
	DecisionRejected
	DecisionExpired
)

func (d Decision) String() string {
	switch d {
	case DecisionApproved:
		return "approved"
	case DecisionRejected:
		return "rejected"
	case DecisionExpired:
		return "expired"
	default:
		return ""
	}
}

// ParseDecision is the inverse of Decision.String. Unknown input yields DecisionNone.
func ParseDecision(s string) Decision {
	switch s {
	case "approved":
		return DecisionApproved
	case "rejected":
		return DecisionRejected
	case "expired":
		return DecisionExpired
	default:
		return DecisionNone
	}
}

// DecisionFor maps a terminal state to its decision.
func DecisionFor(s State) Decision {
	switch s {
	case StateApproved:
		return DecisionApproved
	case StateRejected:
		return DecisionRejected
	case StateExpired:
		return DecisionExpired
	default:
		return DecisionNone
	}
}

// Urgency tells a client how close a live session is to its deadline.
type Urgency int8

const (
	UrgencyNormal Urgency = iota
	UrgencyWarning
	UrgencyCritical
	UrgencyEnded
)

func (u Urgency) String() string {
	switch u {
	case UrgencyWarning:
		return "warning"
	case UrgencyCritical:
		return "critical"
	case UrgencyEnded:
		return "ended"
	default:
		return "normal"
	}
}
