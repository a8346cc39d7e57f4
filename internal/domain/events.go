package domain

import "time"

type EventType string

const (
	EventPDCACycleCompleted   EventType = "PDCA_CYCLE_COMPLETED"
	EventActionPlanReproposed EventType = "ACTION_PLAN_REPROPOSED"
	EventIdeaApproved         EventType = "IDEA_APPROVED"
	EventIdeaConverted        EventType = "IDEA_CONVERTED"
)

// Event is an audit signal produced by an aggregate operation. Aggregates
// return events to their caller; they never hold or dispatch them.
type Event struct {
	Type           EventType
	AggregateID    string
	OrganizationID string
	BranchID       string
	OccurredAt     time.Time
	Payload        map[string]any
}
