package engine

// State is a step of the allocation state machine.
type State string

const (
	StateIdle               State = "idle"
	StateValidating         State = "validating"
	StateCheckingSpace      State = "checking_space"
	StateResolving          State = "resolving"
	StateAllocatingSparse   State = "allocating_sparse"
	StateAllocatingStreamed State = "allocating_streamed"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Terminal reports whether s ends an allocation.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
