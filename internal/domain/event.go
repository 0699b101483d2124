package domain

import (
	"context"
	"time"
)

// Event is an organizer-owned event that contacts and registrations belong to.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Venue       *string   `json:"venue"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
	Categories  []string  `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns an active Event. ID is set by the repository on create.
func NewEvent(name, slug string, startDate, endDate time.Time, now time.Time) *Event {
	return &Event{
		Name:       name,
		Slug:       slug,
		StartDate:  startDate,
		EndDate:    endDate,
		IsActive:   true,
		Categories: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// EventCounts holds the number of related records for an event.
type EventCounts struct {
	Contacts      int `json:"contacts"`
	Registrations int `json:"registrations"`
	Templates     int `json:"templates"`
	Campaigns     int `json:"campaigns"`
}

// EventSummary is an event together with its related record counts.
// swagger:model EventSummary
type EventSummary struct {
	*Event
	Counts EventCounts `json:"counts"`
}

// CreateEventInput carries the fields accepted when creating an event.
type CreateEventInput struct {
	Name        string
	Description *string
	Venue       *string
	StartDate   time.Time
	EndDate     time.Time
	Categories  []string
}

// EventUpdate is a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Name        *string
	Description *string
	Venue       *string
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
	Categories  []string
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context) ([]*EventSummary, error)
	Counts(ctx context.Context, id string) (EventCounts, error)
	Update(ctx context.Context, e *Event) error
	// Delete removes the event; contacts, registrations, templates and campaigns cascade.
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for event management.
type EventService interface {
	List(ctx context.Context) ([]*EventSummary, error)
	Create(ctx context.Context, in CreateEventInput) (*Event, error)
	Get(ctx context.Context, id string) (*EventSummary, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}
