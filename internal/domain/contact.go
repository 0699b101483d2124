package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ContactStatus is the lifecycle state of a contact within an event.
type ContactStatus string

const (
	ContactStatusImported   ContactStatus = "IMPORTED"
	ContactStatusInvited    ContactStatus = "INVITED"
	ContactStatusRegistered ContactStatus = "REGISTERED"
	ContactStatusCancelled  ContactStatus = "CANCELLED"
)

// Valid reports whether s is one of the known contact statuses.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusImported, ContactStatusInvited, ContactStatusRegistered, ContactStatusCancelled:
		return true
	}
	return false
}

// UncategorizedGroup is the group name for contacts without a category.
const UncategorizedGroup = "Uncategorized"

// Contact is a person attached to an event, either imported, added manually or self-registered.
// swagger:model Contact
type Contact struct {
	ID           string               `json:"id"`
	EventID      string               `json:"event_id"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	Email        string               `json:"email"`
	Phone        *string              `json:"phone"`
	Organization *string              `json:"organization"`
	Designation  *string              `json:"designation"`
	Category     *string              `json:"category"`
	Status       ContactStatus        `json:"status"`
	InviteToken  *string              `json:"invite_token,omitempty"`
	ImportBatch  *string              `json:"import_batch,omitempty"`
	Metadata     json.RawMessage      `json:"metadata,omitempty" swaggertype:"object"`
	Registration *RegistrationSummary `json:"registration,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// GroupName returns the category used for grouping, or UncategorizedGroup.
func (c *Contact) GroupName() string {
	if c.Category == nil || *c.Category == "" {
		return UncategorizedGroup
	}
	return *c.Category
}

// RegistrationSummary is the part of a registration shown alongside a contact.
type RegistrationSummary struct {
	ID               string             `json:"id"`
	Status           RegistrationStatus `json:"status"`
	ConfirmationCode string             `json:"confirmation_code"`
	RegisteredAt     time.Time          `json:"registered_at"`
	BadgeGenerated   bool               `json:"badge_generated"`
}

// ContactFilter narrows contact queries. Empty fields are ignored.
type ContactFilter struct {
	Search   string
	Category string
	Status   ContactStatus
}

// RecipientFilter selects campaign recipients. Empty fields match everything.
type RecipientFilter struct {
	Category           string             `json:"category,omitempty"`
	RegistrationStatus RegistrationStatus `json:"registration_status,omitempty"`
	All                bool               `json:"all,omitempty"`
}

// ContactUpdate is a partial update; nil fields are left unchanged.
type ContactUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Organization *string
	Designation  *string
	Category     *string
	Status       *ContactStatus
}

// StatusCounts holds one counter per contact status.
type StatusCounts struct {
	Imported   int `json:"IMPORTED"`
	Invited    int `json:"INVITED"`
	Registered int `json:"REGISTERED"`
	Cancelled  int `json:"CANCELLED"`
}

// Add increments the counter for status.
func (s *StatusCounts) Add(status ContactStatus) {
	switch status {
	case ContactStatusImported:
		s.Imported++
	case ContactStatusInvited:
		s.Invited++
	case ContactStatusRegistered:
		s.Registered++
	case ContactStatusCancelled:
		s.Cancelled++
	}
}

// ContactGroup is a category bucket of contacts.
type ContactGroup struct {
	Category string     `json:"category"`
	Count    int        `json:"count"`
	Contacts []*Contact `json:"contacts"`
}

// GroupedContacts is the category-grouped view over an event's contacts.
type GroupedContacts struct {
	Groups       []*ContactGroup `json:"groups"`
	StatusCounts StatusCounts    `json:"status_counts"`
	Total        int             `json:"total"`
}

// ContactDetail is a contact with its email history and owning event.
type ContactDetail struct {
	*Contact
	EmailLogs []*EmailLog `json:"email_logs"`
	Event     *Event      `json:"event"`
}

// ContactRepository defines storage operations for contacts.
// Create returns ErrConflict when the email already exists within the event.
type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, id string) (*Contact, error)
	GetByInviteToken(ctx context.Context, token string) (*Contact, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Contact, error)
	// List returns a page of contacts ordered by created_at DESC and the total match count.
	List(ctx context.Context, eventID string, filter ContactFilter, page PaginationParams) ([]*Contact, int, error)
	// ListForGrouping returns all matching contacts ordered by category ASC, created_at DESC.
	ListForGrouping(ctx context.Context, eventID string, filter ContactFilter) ([]*Contact, error)
	// ListForExport returns every contact of the event ordered by created_at ASC.
	ListForExport(ctx context.Context, eventID string) ([]*Contact, error)
	ListByIDs(ctx context.Context, eventID string, ids []string) ([]*Contact, error)
	ListByRecipientFilter(ctx context.Context, eventID string, filter RecipientFilter) ([]*Contact, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	Update(ctx context.Context, c *Contact) error
	UpdateStatus(ctx context.Context, id string, status ContactStatus) error
	// Delete removes the contact together with its email logs and registration.
	Delete(ctx context.Context, id string) error
}

// CreateContactInput carries the fields accepted when adding a contact manually.
type CreateContactInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Organization *string
	Designation  *string
	Category     *string
	Status       ContactStatus
}

// ContactPage is one page of the paginated contact list.
type ContactPage struct {
	Contacts []*Contact
	Total    int
}

// ContactService defines the business logic for contact management and querying.
type ContactService interface {
	List(ctx context.Context, eventID string, filter ContactFilter, page PaginationParams) (*ContactPage, error)
	ListGrouped(ctx context.Context, eventID string, filter ContactFilter) (*GroupedContacts, error)
	AttendeeOverview(ctx context.Context, eventID string, filter ContactFilter) (*AttendeeOverview, error)
	Create(ctx context.Context, eventID string, in CreateContactInput) (*Contact, error)
	Get(ctx context.Context, eventID, contactID string) (*ContactDetail, error)
	Update(ctx context.Context, eventID, contactID string, upd ContactUpdate) (*Contact, error)
	Delete(ctx context.Context, eventID, contactID string) error
	ExportCSV(ctx context.Context, eventID string) ([]byte, error)
	ExportRows(ctx context.Context, eventID string) ([]ContactExportRow, error)
}

// ContactExportRow is one exported contact row.
type ContactExportRow struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Organization       string `json:"organization"`
	Designation        string `json:"designation"`
	Category           string `json:"category"`
	RegistrationStatus string `json:"registration_status"`
	RegisteredAt       string `json:"registered_at"`
}
