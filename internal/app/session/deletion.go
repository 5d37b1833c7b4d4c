package session

import (
	"fmt"

	"userdir/internal/app/user"
)

// DeletionState is the phase of the two-step delete confirmation.
type DeletionState int

const (
	// DeletionIdle means no deletion is staged.
	DeletionIdle DeletionState = iota
	// DeletionPending means a target is staged and awaits confirm or cancel.
	DeletionPending
	// DeletionInFlight means the confirmed removal is waiting on the remote API.
	DeletionInFlight
)

func (s DeletionState) String() string {
	switch s {
	case DeletionPending:
		return "pending"
	case DeletionInFlight:
		return "in_flight"
	}
	return "idle"
}

// MarshalText renders the state name in JSON.
func (s DeletionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Deletion is the explicit confirmation value. Target is meaningful only when
// State is not DeletionIdle.
type Deletion struct {
	State  DeletionState `json:"state"`
	Target user.ID       `json:"target,omitempty"`
}

// Idle is the zero Deletion.
func Idle() Deletion { return Deletion{} }

// Pending stages id.
func Pending(id user.ID) Deletion { return Deletion{State: DeletionPending, Target: id} }

// InFlight marks id as being removed.
func InFlight(id user.ID) Deletion { return Deletion{State: DeletionInFlight, Target: id} }

// Is reports whether d is in state s for id.
func (d Deletion) Is(s DeletionState, id user.ID) bool {
	return d.State == s && d.Target == id
}

func (d Deletion) String() string {
	if d.State == DeletionIdle {
		return d.State.String()
	}
	return fmt.Sprintf("%s(%s)", d.State, d.Target)
}
