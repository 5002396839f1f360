package state

import "fmt"

// Status enumerates the per-day report lifecycle states.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusChecking   Status = "CHECKING"
	StatusFound      Status = "FOUND"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusReminded   Status = "REMINDED"
	StatusWaiting    Status = "WAITING"
)

// transitions is the forward-only state machine. COMPLETED is terminal;
// FAILED, REMINDED, and WAITING may resume checking on a later slot.
var transitions = map[Status][]Status{
	StatusPending:    {StatusChecking, StatusFailed},
	StatusChecking:   {StatusFound, StatusReminded, StatusWaiting, StatusFailed},
	StatusFound:      {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusReminded:   {StatusChecking, StatusWaiting, StatusFailed},
	StatusWaiting:    {StatusChecking, StatusFailed},
	StatusFailed:     {StatusChecking},
	StatusCompleted:  {},
}

// CanTransition reports whether moving from one status to another is
// legal. Same-state updates are always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether the status is a known enum value. Unknown values
// can appear when loading state files written by newer versions.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string { return string(s) }

// illegalTransitionError describes a rejected status change.
func illegalTransitionError(from, to Status) error {
	return fmt.Errorf("illegal status transition %s -> %s", from, to)
}
