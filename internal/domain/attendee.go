package domain

import "context"

// AttendeeOverview is the attendee page payload: the event, its templates and the grouped contacts.
type AttendeeOverview struct {
	Event        *Event           `json:"event"`
	Templates    []*EmailTemplate `json:"templates"`
	Groups       []*ContactGroup  `json:"groups"`
	StatusCounts StatusCounts     `json:"status_counts"`
	Total        int              `json:"total"`
}

// AttendeeSnapshot is the raw result of one batched read.
type AttendeeSnapshot struct {
	Event     *Event
	Contacts  []*Contact
	Templates []*EmailTemplate
}

// AttendeeSnapshotReader loads an event, its filtered contacts (grouping order) and its
// templates inside a single read-only transaction. Returns ErrNotFound when the event is missing.
type AttendeeSnapshotReader interface {
	ReadAttendeeSnapshot(ctx context.Context, eventID string, filter ContactFilter) (*AttendeeSnapshot, error)
}
