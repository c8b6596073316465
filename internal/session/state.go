// Package session holds the cleanup view state: one directory listing, its
// background sizing pass, and the sort and selection state of the table.
//
// The lifecycle is a small state machine:
//
//	Idle -> Listing -> SizingInProgress -> Ready
//	           \              \
//	            +--------------+--> Cancelled
//
// Opening a directory is allowed from any state and restarts the machine.
package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by Transition for an event the state does not accept
var ErrInvalidTransition = errors.New("invalid session transition")

// State of a cleanup session
type State int

const (
	Idle State = iota
	Listing
	SizingInProgress
	Ready
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case SizingInProgress:
		return "sizing"
	case Ready:
		return "ready"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether background work may still be running
func (s State) Active() bool {
	return s == Listing || s == SizingInProgress
}

// Event drives a transition
type Event int

const (
	EventOpen Event = iota
	EventListed
	EventSizingDone
	EventCancel
)

func (e Event) String() string {
	switch e {
	case EventOpen:
		return "open"
	case EventListed:
		return "listed"
	case EventSizingDone:
		return "sizing-done"
	case EventCancel:
		return "cancel"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Transition is the pure state function of a session
func Transition(s State, e Event) (State, error) {
	switch e {
	case EventOpen:
		return Listing, nil
	case EventListed:
		if s == Listing {
			return SizingInProgress, nil
		}
	case EventSizingDone:
		if s == SizingInProgress {
			return Ready, nil
		}
	case EventCancel:
		if s.Active() {
			return Cancelled, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
