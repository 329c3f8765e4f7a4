// Package rotation implements the multi-phase, zero-downtime
// credential-rotation state machine (spec §4.7, C7): INITIATED ->
// DUAL_ACTIVE -> OLD_DEPRECATED -> NEW_ACTIVE (terminal success), with
// FAILED reachable from any non-terminal state. Grounded on the
// rotation record shape and generate/rotate/validate flow of
// other_examples/33c20cba_rendiffdev-ffprobe-api__internal-services-secret_rotation.go.go,
// restructured around an explicit state DAG the source file leaves
// implicit in branching `if`s.
package rotation

import "time"

// State is a node in the rotation DAG.
type State string

const (
	StateInitiated     State = "INITIATED"
	StateDualActive    State = "DUAL_ACTIVE"
	StateOldDeprecated State = "OLD_DEPRECATED"
	StateNewActive     State = "NEW_ACTIVE"
	StateFailed        State = "FAILED"
)

// Terminal reports whether s has no outgoing transitions.
func (s State) Terminal() bool {
	return s == StateNewActive || s == StateFailed
}

// allowedNext is the DAG from spec §4.7: no backward transitions, FAILED
// reachable from any non-terminal state.
var allowedNext = map[State][]State{
	StateInitiated:     {StateDualActive, StateFailed},
	StateDualActive:    {StateOldDeprecated, StateFailed},
	StateOldDeprecated: {StateNewActive, StateFailed},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range allowedNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionRecord is the live per-client_id record read by C5 step 4
// to decide the acceptable credential-version set. Stored at
// secretstore.TransitionPath(client_id).
type TransitionRecord struct {
	ClientID   string    `json:"client_id"`
	OldVersion string    `json:"old_version"`
	NewVersion string    `json:"new_version"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	State      State     `json:"state"`
}

// Expired reports whether the DUAL_ACTIVE window has elapsed, the time
// condition that lets the scheduled driver auto-advance to
// OLD_DEPRECATED.
func (t *TransitionRecord) Expired(now time.Time) bool {
	return !t.EndTime.IsZero() && !now.Before(t.EndTime)
}

// Record is the process-level rotation record keyed by RotationID,
// tracked independently of the TransitionRecord the secret store holds
// (the rotation driver needs history — started_at, completed_at,
// status — that has no place in the store's own transition record).
type Record struct {
	RotationID       string     `json:"rotation_id"`
	ClientID         string     `json:"client_id"`
	CurrentState     State      `json:"current_state"`
	TargetState      State      `json:"target_state"`
	OldVersion       string     `json:"old_version"`
	NewVersion       string     `json:"new_version"`
	TransitionPeriod time.Duration `json:"transition_period_ns"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Status           State      `json:"status"`

	// Force allows initiating a new rotation for a client_id that
	// already has a non-terminal rotation (spec §4.7 concurrency note).
	Force bool `json:"force"`
}
