package model

// PollUpdate is what observers of a poll receive after a mutation.
// Action is set only for signals that do not change the stored state.
type PollUpdate struct {
	Poll   Poll
	Action Action
}
