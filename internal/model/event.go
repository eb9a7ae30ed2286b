package model

import "time"

type EventType string

const (
	EventVoteApplied   EventType = "vote.applied"
	EventStatusChanged EventType = "status.changed"
	EventResultsReset  EventType = "results.reset"
	EventPollCreated   EventType = "poll.created"
	EventPollDeleted   EventType = "poll.deleted"
)

// PollEvent is what gets published to the event stream after a mutation
// has been persisted. Fields that do not apply to the type are omitted.
type PollEvent struct {
	Type          EventType `json:"type"`
	PollID        PollID    `json:"poll_id"`
	QuestionIndex *int      `json:"question_index,omitempty"`
	Option        string    `json:"option,omitempty"`
	Count         int       `json:"count,omitempty"`
	Status        Status    `json:"status,omitempty"`
	Action        Action    `json:"action,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
