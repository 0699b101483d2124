package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"registrationdesk/internal/domain"
	"registrationdesk/internal/metrics"
)

// eventDateLayout renders dates as M/D/YYYY.
const eventDateLayout = "1/2/2006"

var errTemplateNotFound = fmt.Errorf("email template not found, select a valid template: %w", domain.ErrInvalidInput)

type emailDispatcher struct {
	eventRepo    domain.EventRepository
	contactRepo  domain.ContactRepository
	templateRepo domain.EmailTemplateRepository
	campaignRepo domain.CampaignRepository
	logRepo      domain.EmailLogRepository
	mailer       domain.Mailer
	renderer     domain.TemplateRenderer
	appURL       string
	logger       *slog.Logger
	now          func() time.Time
}

// DispatcherDeps groups the collaborators of the email dispatcher.
type DispatcherDeps struct {
	Events    domain.EventRepository
	Contacts  domain.ContactRepository
	Templates domain.EmailTemplateRepository
	Campaigns domain.CampaignRepository
	Logs      domain.EmailLogRepository
	Mailer    domain.Mailer
	Renderer  domain.TemplateRenderer
}

// NewEmailDispatcher returns an EmailDispatcher. appURL is the public base URL used in links.
func NewEmailDispatcher(deps DispatcherDeps, appURL string, logger *slog.Logger) domain.EmailDispatcher {
	return &emailDispatcher{
		eventRepo:    deps.Events,
		contactRepo:  deps.Contacts,
		templateRepo: deps.Templates,
		campaignRepo: deps.Campaigns,
		logRepo:      deps.Logs,
		mailer:       deps.Mailer,
		renderer:     deps.Renderer,
		appURL:       appURL,
		logger:       logger,
		now:          time.Now,
	}
}

func (d *emailDispatcher) SendToContacts(ctx context.Context, eventID string, contactIDs []string, templateID string) (*domain.DispatchResult, error) {
	if len(contactIDs) == 0 {
		return nil, fmt.Errorf("no contacts selected: %w", domain.ErrInvalidInput)
	}
	if templateID == "" {
		return nil, fmt.Errorf("select an email template: %w", domain.ErrInvalidInput)
	}
	tpl, err := d.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tpl.EventID != eventID {
		return nil, errTemplateNotFound
	}
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := d.now()
	campaign := &domain.EmailCampaign{
		EventID:         eventID,
		TemplateID:      tpl.ID,
		Name:            fmt.Sprintf("%s - %s", tpl.Name, now.Format(eventDateLayout)),
		Status:          domain.CampaignStatusSending,
		TotalRecipients: len(contactIDs),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := d.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	contacts, err := d.contactRepo.ListByIDs(ctx, eventID, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	sent, failed := d.dispatch(ctx, campaign, tpl, event, contacts)

	finished := d.now()
	campaign.Status = domain.CampaignStatusCompleted
	campaign.SentCount = sent
	campaign.FailedCount = failed
	campaign.SentAt = &finished
	campaign.UpdatedAt = finished
	if err := d.campaignRepo.UpdateProgress(ctx, campaign); err != nil {
		return nil, fmt.Errorf("complete campaign: %w", err)
	}
	return &domain.DispatchResult{SentCount: sent, FailedCount: failed, Total: len(contacts)}, nil
}

func (d *emailDispatcher) SendCampaign(ctx context.Context, eventID, campaignID string) (*domain.DispatchResult, error) {
	campaign, err := d.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign.EventID != eventID || campaign.Template == nil {
		return nil, domain.ErrNotFound
	}
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	recipients, err := d.contactRepo.ListByRecipientFilter(ctx, eventID, campaign.RecipientFilter)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	campaign.Status = domain.CampaignStatusSending
	campaign.TotalRecipients = len(recipients)
	campaign.UpdatedAt = d.now()
	if err := d.campaignRepo.UpdateProgress(ctx, campaign); err != nil {
		return nil, fmt.Errorf("mark campaign sending: %w", err)
	}

	logged, err := d.logRepo.LoggedContactIDs(ctx, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("list logged contacts: %w", err)
	}
	pending := make([]*domain.Contact, 0, len(recipients))
	for _, c := range recipients {
		if _, done := logged[c.ID]; !done {
			pending = append(pending, c)
		}
	}

	sent, failed := d.dispatch(ctx, campaign, campaign.Template, event, pending)

	totalSent, totalFailed, err := d.logRepo.CountByStatus(ctx, campaign.ID)
	if err != nil {
		return nil, fmt.Errorf("count campaign logs: %w", err)
	}
	finished := d.now()
	campaign.Status = domain.CampaignStatusCompleted
	campaign.SentCount = totalSent
	campaign.FailedCount = totalFailed
	campaign.SentAt = &finished
	campaign.UpdatedAt = finished
	if err := d.campaignRepo.UpdateProgress(ctx, campaign); err != nil {
		return nil, fmt.Errorf("complete campaign: %w", err)
	}
	return &domain.DispatchResult{SentCount: sent, FailedCount: failed, Total: len(recipients)}, nil
}

// dispatch sends tpl to every contact sequentially. A failed send is logged and never stops the loop.
func (d *emailDispatcher) dispatch(ctx context.Context, campaign *domain.EmailCampaign, tpl *domain.EmailTemplate, event *domain.Event, contacts []*domain.Contact) (sent, failed int) {
	templateType := string(tpl.Type)
	for _, c := range contacts {
		vars := d.variables(event, c)
		subject := d.renderer.RenderSubject(tpl.Subject, vars)
		html := d.renderer.RenderBody(tpl.BodyHTML, tpl.HeaderHTML, tpl.FooterHTML, vars)

		entry := &domain.EmailLog{
			CampaignID: campaign.ID,
			ContactID:  c.ID,
			ToEmail:    c.Email,
			Subject:    subject,
		}
		providerID, sendErr := d.mailer.Send(ctx, &domain.OutgoingEmail{To: c.Email, Subject: subject, HTML: html})
		now := d.now()
		entry.CreatedAt = now
		if sendErr != nil {
			msg := sendErr.Error()
			entry.Status = domain.EmailLogStatusFailed
			entry.ErrorMessage = &msg
			failed++
			metrics.EmailsFailed.WithLabelValues(templateType).Inc()
			d.logger.WarnContext(ctx, "email send failed",
				"campaign_id", campaign.ID, "contact_id", c.ID, "to", c.Email, "err", sendErr)
		} else {
			entry.Status = domain.EmailLogStatusSent
			entry.SentAt = &now
			entry.ProviderMessageID = optional(providerID)
			sent++
			metrics.EmailsSent.WithLabelValues(templateType).Inc()
		}

		if err := d.logRepo.Create(ctx, entry); err != nil {
			d.logger.ErrorContext(ctx, "record email log failed",
				"campaign_id", campaign.ID, "contact_id", c.ID, "err", err)
		}

		if sendErr == nil && tpl.Type == domain.TemplateTypeInvitation && c.Status == domain.ContactStatusImported {
			if err := d.contactRepo.UpdateStatus(ctx, c.ID, domain.ContactStatusInvited); err != nil {
				d.logger.ErrorContext(ctx, "promote contact to invited failed", "contact_id", c.ID, "err", err)
			} else {
				c.Status = domain.ContactStatusInvited
			}
		}
	}
	return sent, failed
}

func (d *emailDispatcher) variables(event *domain.Event, c *domain.Contact) map[string]string {
	code := ""
	if c.Registration != nil {
		code = c.Registration.ConfirmationCode
	}
	return map[string]string{
		"firstName":        c.FirstName,
		"lastName":         c.LastName,
		"email":            c.Email,
		"eventName":        event.Name,
		"eventDate":        event.StartDate.Format(eventDateLayout),
		"eventVenue":       deref(event.Venue),
		"registrationLink": registrationLink(d.appURL, event.Slug),
		"confirmationCode": code,
	}
}

func registrationLink(appURL, eventSlug string) string {
	return appURL + "/register/" + eventSlug
}
