package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "PENDING"
	RegistrationStatusConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
)

// NotRegistered is exported in place of a status for contacts without a registration.
const NotRegistered = "NOT REGISTERED"

// Valid reports whether s is one of the known registration statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusConfirmed, RegistrationStatusCancelled:
		return true
	}
	return false
}

// Registration is a contact's confirmed participation in an event. One per contact.
// swagger:model Registration
type Registration struct {
	ID               string             `json:"id"`
	ContactID        string             `json:"contact_id"`
	EventID          string             `json:"event_id"`
	Status           RegistrationStatus `json:"status"`
	ConfirmationCode string             `json:"confirmation_code"`
	RegisteredAt     time.Time          `json:"registered_at"`
	BadgeGenerated   bool               `json:"badge_generated"`
	Contact          *Contact           `json:"contact,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// RegistrationRepository defines storage operations for registrations.
// Create returns ErrConflict when the confirmation code or contact already has a registration.
// List methods populate Contact.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByContactID(ctx context.Context, contactID string) (*Registration, error)
	GetByConfirmationCode(ctx context.Context, code string) (*Registration, error)
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string, status RegistrationStatus) ([]*Registration, error)
	ListForExport(ctx context.Context, eventID string) ([]*Registration, error)
	ListConfirmed(ctx context.Context, eventID string, ids []string) ([]*Registration, error)
	ListWithBadges(ctx context.Context, eventID string) ([]*Registration, error)
	MarkBadgeGenerated(ctx context.Context, id string) error
}

// RegistrationInput is the public registration form.
type RegistrationInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Organization string
	Designation  string
}

// PublicEvent is the subset of an event shown on the public registration page.
type PublicEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Venue       *string   `json:"venue"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// InvitePrefill holds the contact fields used to pre-fill the registration form.
type InvitePrefill struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone"`
	Organization *string `json:"organization"`
	Designation  *string `json:"designation"`
	Category     *string `json:"category"`
}

// RegistrationPage is the public registration page payload. Contact is nil without a valid invite token.
type RegistrationPage struct {
	Event   PublicEvent    `json:"event"`
	Contact *InvitePrefill `json:"contact"`
}

// RegistrationStats summarizes registrations for an event.
type RegistrationStats struct {
	Total          int `json:"total"`
	Confirmed      int `json:"confirmed"`
	Pending        int `json:"pending"`
	Cancelled      int `json:"cancelled"`
	TotalContacts  int `json:"total_contacts"`
	ConversionRate int `json:"conversion_rate"`
}

// RegistrationService covers the public registration flow and its admin views.
type RegistrationService interface {
	Page(ctx context.Context, slug, token string) (*RegistrationPage, error)
	// Register returns (reg, created, err): created is false when the contact was already
	// registered, in which case reg is the existing registration.
	Register(ctx context.Context, slug, token string, in RegistrationInput) (*Registration, bool, error)
	List(ctx context.Context, eventID string, status RegistrationStatus, search string) ([]*Registration, error)
	Stats(ctx context.Context, eventID string) (*RegistrationStats, error)
	ExportCSV(ctx context.Context, eventID string) ([]byte, error)
}
