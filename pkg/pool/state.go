package pool

// State is the lifecycle position of a pooled instance.
//
//	Created -> Idle   (Prepare, ReleasePrepared)
//	Created -> Active (Acquire miss)
//	Idle    -> Active (Acquire hit)
//	Active  -> Idle   (Release)
//	any     -> Destroyed (DestroyByID, ClearAll)
//
// Destroyed is terminal. Transitions not listed above are ignored.
type State uint8

const (
	StateCreated State = iota
	StateIdle
	StateActive
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
