package domain

import (
	"context"
	"time"
)

// TemplateType classifies an email template.
type TemplateType string

const (
	TemplateTypeInvitation    TemplateType = "INVITATION"
	TemplateTypeReminder      TemplateType = "REMINDER"
	TemplateTypeConfirmation  TemplateType = "CONFIRMATION"
	TemplateTypeAnnouncement  TemplateType = "ANNOUNCEMENT"
	TemplateTypeBadgeDelivery TemplateType = "BADGE_DELIVERY"
	TemplateTypeCustom        TemplateType = "CUSTOM"
)

// TemplateTypes lists every accepted template type.
var TemplateTypes = []TemplateType{
	TemplateTypeInvitation,
	TemplateTypeReminder,
	TemplateTypeConfirmation,
	TemplateTypeAnnouncement,
	TemplateTypeBadgeDelivery,
	TemplateTypeCustom,
}

// EmailTemplate is an organizer-authored message with {{variable}} placeholders.
// swagger:model EmailTemplate
type EmailTemplate struct {
	ID         string       `json:"id"`
	EventID    string       `json:"event_id"`
	Name       string       `json:"name"`
	Type       TemplateType `json:"type"`
	Subject    string       `json:"subject"`
	BodyHTML   string       `json:"body_html"`
	HeaderHTML *string      `json:"header_html"`
	FooterHTML *string      `json:"footer_html"`
	Variables  []string     `json:"variables"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CampaignStatus is the state of an email campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusSending   CampaignStatus = "SENDING"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
)

// EmailCampaign groups the sends of one template to a recipient set.
// swagger:model EmailCampaign
type EmailCampaign struct {
	ID              string          `json:"id"`
	EventID         string          `json:"event_id"`
	TemplateID      string          `json:"template_id"`
	Name            string          `json:"name"`
	Status          CampaignStatus  `json:"status"`
	RecipientFilter RecipientFilter `json:"recipient_filter"`
	TotalRecipients int             `json:"total_recipients"`
	SentCount       int             `json:"sent_count"`
	FailedCount     int             `json:"failed_count"`
	ScheduledAt     *time.Time      `json:"scheduled_at"`
	SentAt          *time.Time      `json:"sent_at"`
	Template        *EmailTemplate  `json:"template,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EmailLogStatus is the outcome of one send attempt.
type EmailLogStatus string

const (
	EmailLogStatusSent   EmailLogStatus = "SENT"
	EmailLogStatusFailed EmailLogStatus = "FAILED"
)

// EmailLog records one send attempt. At most one exists per (campaign, contact).
// swagger:model EmailLog
type EmailLog struct {
	ID                string         `json:"id"`
	CampaignID        string         `json:"campaign_id"`
	ContactID         string         `json:"contact_id"`
	ToEmail           string         `json:"to_email"`
	Subject           string         `json:"subject"`
	Status            EmailLogStatus `json:"status"`
	SentAt            *time.Time     `json:"sent_at"`
	ErrorMessage      *string        `json:"error_message"`
	ProviderMessageID *string        `json:"provider_message_id"`
	Contact           *Contact       `json:"contact,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// OutgoingEmail is a fully rendered message handed to the mail transport.
type OutgoingEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer defines the contract for sending emails (infrastructure port).
// Send returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg *OutgoingEmail) (string, error)
}

// TemplateRenderer substitutes {{variable}} placeholders into templates.
type TemplateRenderer interface {
	RenderSubject(subject string, vars map[string]string) string
	RenderBody(body string, header, footer *string, vars map[string]string) string
}

// EmailTemplateRepository defines storage operations for email templates.
type EmailTemplateRepository interface {
	Create(ctx context.Context, t *EmailTemplate) error
	GetByID(ctx context.Context, id string) (*EmailTemplate, error)
	ListByEvent(ctx context.Context, eventID string) ([]*EmailTemplate, error)
	Update(ctx context.Context, t *EmailTemplate) error
	Delete(ctx context.Context, id string) error
}

// CampaignRepository defines storage operations for email campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *EmailCampaign) error
	// GetByID loads the campaign with its template.
	GetByID(ctx context.Context, id string) (*EmailCampaign, error)
	ListByEvent(ctx context.Context, eventID string) ([]*EmailCampaign, error)
	// UpdateProgress persists status, counters and sent_at.
	UpdateProgress(ctx context.Context, c *EmailCampaign) error
	Delete(ctx context.Context, id string) error
}

// EmailLogRepository defines storage operations for email logs.
// Create returns ErrConflict when the (campaign, contact) pair is already logged.
type EmailLogRepository interface {
	Create(ctx context.Context, l *EmailLog) error
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*EmailLog, error)
	ListByContact(ctx context.Context, contactID string) ([]*EmailLog, error)
	LoggedContactIDs(ctx context.Context, campaignID string) (map[string]struct{}, error)
	CountByStatus(ctx context.Context, campaignID string) (sent, failed int, err error)
}

// DispatchResult summarizes one bulk send.
type DispatchResult struct {
	SentCount   int `json:"sent_count"`
	FailedCount int `json:"failed_count"`
	Total       int `json:"total"`
}

// EmailDispatcher sends a template to many contacts, logging every attempt.
type EmailDispatcher interface {
	SendToContacts(ctx context.Context, eventID string, contactIDs []string, templateID string) (*DispatchResult, error)
	SendCampaign(ctx context.Context, eventID, campaignID string) (*DispatchResult, error)
}

// EmailTemplateInput carries the writable template fields. For updates nil pointers are unchanged.
type EmailTemplateInput struct {
	Name       *string
	Type       *TemplateType
	Subject    *string
	BodyHTML   *string
	HeaderHTML *string
	FooterHTML *string
	Variables  []string
}

// EmailTemplateService defines template management.
type EmailTemplateService interface {
	List(ctx context.Context, eventID string) ([]*EmailTemplate, error)
	Create(ctx context.Context, eventID string, in EmailTemplateInput) (*EmailTemplate, error)
	Get(ctx context.Context, eventID, templateID string) (*EmailTemplate, error)
	Update(ctx context.Context, eventID, templateID string, in EmailTemplateInput) (*EmailTemplate, error)
	Delete(ctx context.Context, eventID, templateID string) error
}

// CreateCampaignInput carries the fields accepted when creating a campaign.
type CreateCampaignInput struct {
	Name            string
	TemplateID      string
	RecipientFilter RecipientFilter
	ScheduledAt     *time.Time
}

// CampaignDetail is a campaign with its most recent logs.
type CampaignDetail struct {
	*EmailCampaign
	Logs []*EmailLog `json:"logs"`
}

// CampaignService defines campaign management.
type CampaignService interface {
	List(ctx context.Context, eventID string) ([]*EmailCampaign, error)
	Create(ctx context.Context, eventID string, in CreateCampaignInput) (*EmailCampaign, error)
	Get(ctx context.Context, eventID, campaignID string) (*CampaignDetail, error)
	Delete(ctx context.Context, eventID, campaignID string) error
}
