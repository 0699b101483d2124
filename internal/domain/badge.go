package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Badge template defaults.
const (
	DefaultBadgeTemplateName = "Default Badge"
	DefaultBadgeWidth        = 400
	DefaultBadgeHeight       = 600
)

// BadgeTemplate is the per-event badge design configuration.
// swagger:model BadgeTemplate
type BadgeTemplate struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	Name          string          `json:"name"`
	DesignJSON    json.RawMessage `json:"design_json" swaggertype:"object"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	BackgroundURL *string         `json:"background_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Badge is the generated badge record of a registration. QRCodeData holds the QR payload URL.
type Badge struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	TemplateID     string    `json:"template_id"`
	QRCodeData     string    `json:"qr_code_data"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BadgeData is everything rendered onto a badge.
type BadgeData struct {
	EventName        string
	FirstName        string
	LastName         string
	Organization     string
	Designation      string
	Category         string
	ConfirmationCode string
	QRDataURL        string
}

// BadgeTemplateRepository defines storage operations for badge templates.
type BadgeTemplateRepository interface {
	GetByEvent(ctx context.Context, eventID string) (*BadgeTemplate, error)
	// Upsert creates or replaces the event's template and sets ID.
	Upsert(ctx context.Context, t *BadgeTemplate) error
}

// BadgeRepository defines storage operations for badges.
type BadgeRepository interface {
	// Upsert creates or overwrites the badge of a registration.
	Upsert(ctx context.Context, b *Badge) error
}

// QREncoder turns text into an embeddable image data URL.
type QREncoder interface {
	Encode(content string) (string, error)
}

// BadgeRenderer produces the printable HTML document of a badge.
type BadgeRenderer interface {
	Render(data BadgeData) (string, error)
}

// BadgeGenerationResult summarizes a badge generation run.
type BadgeGenerationResult struct {
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// BadgeSendResult summarizes a badge email run.
type BadgeSendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// BadgeTemplateInput carries the writable badge template fields.
type BadgeTemplateInput struct {
	Name          string
	DesignJSON    json.RawMessage
	Width         int
	Height        int
	BackgroundURL *string
}

// BadgeService defines badge generation, delivery and public rendering.
type BadgeService interface {
	Generate(ctx context.Context, eventID string, registrationIDs []string) (*BadgeGenerationResult, error)
	Send(ctx context.Context, eventID string) (*BadgeSendResult, error)
	Render(ctx context.Context, confirmationCode string) (string, error)
	GetTemplate(ctx context.Context, eventID string) (*BadgeTemplate, error)
	UpsertTemplate(ctx context.Context, eventID string, in BadgeTemplateInput) (*BadgeTemplate, error)
}
