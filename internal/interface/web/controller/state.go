package controller

// State is where the form is in its submission lifecycle.
//
//	Idle -> Validating -> Failed
//	Idle -> Validating -> Submitting -> Succeeded | RequestFailed
//
// Failed, Succeeded and RequestFailed accept a new submission like Idle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateFailed
	StateSubmitting
	StateSucceeded
	StateRequestFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateFailed:
		return "failed"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateRequestFailed:
		return "request_failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a new submission must be refused.
func (s State) Busy() bool {
	return s == StateValidating || s == StateSubmitting
}

// Status is a snapshot of the controller.
type Status struct {
	State State
	// SubmissionID is the ID of the current or most recent submission.
	SubmissionID string
}
