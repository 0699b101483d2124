package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"registrationdesk/internal/domain"
	"registrationdesk/internal/metrics"
)

type badgeService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	templateRepo     domain.BadgeTemplateRepository
	badgeRepo        domain.BadgeRepository
	qr               domain.QREncoder
	renderer         domain.BadgeRenderer
	mailer           domain.Mailer
	appURL           string
	logger           *slog.Logger
	now              func() time.Time
}

// BadgeDeps groups the collaborators of the badge service.
type BadgeDeps struct {
	Events        domain.EventRepository
	Registrations domain.RegistrationRepository
	Templates     domain.BadgeTemplateRepository
	Badges        domain.BadgeRepository
	QR            domain.QREncoder
	Renderer      domain.BadgeRenderer
	Mailer        domain.Mailer
}

func NewBadgeService(deps BadgeDeps, appURL string, logger *slog.Logger) domain.BadgeService {
	return &badgeService{
		eventRepo:        deps.Events,
		registrationRepo: deps.Registrations,
		templateRepo:     deps.Templates,
		badgeRepo:        deps.Badges,
		qr:               deps.QR,
		renderer:         deps.Renderer,
		mailer:           deps.Mailer,
		appURL:           appURL,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *badgeService) badgeURL(code string) string {
	return s.appURL + "/badges/" + code
}

func (s *badgeService) requireEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ensureTemplate returns the event's badge template, creating the default one when missing.
func (s *badgeService) ensureTemplate(ctx context.Context, eventID string) (*domain.BadgeTemplate, error) {
	t, err := s.templateRepo.GetByEvent(ctx, eventID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get badge template: %w", err)
	}
	now := s.now()
	t = &domain.BadgeTemplate{
		EventID:    eventID,
		Name:       domain.DefaultBadgeTemplateName,
		DesignJSON: json.RawMessage(`{"layout":"standard"}`),
		Width:      domain.DefaultBadgeWidth,
		Height:     domain.DefaultBadgeHeight,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.templateRepo.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("create default badge template: %w", err)
	}
	return t, nil
}

func (s *badgeService) Generate(ctx context.Context, eventID string, registrationIDs []string) (*domain.BadgeGenerationResult, error) {
	e, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.ensureTemplate(ctx, eventID)
	if err != nil {
		return nil, err
	}
	regs, err := s.registrationRepo.ListConfirmed(ctx, eventID, registrationIDs)
	if err != nil {
		return nil, fmt.Errorf("list confirmed registrations: %w", err)
	}

	result := &domain.BadgeGenerationResult{Total: len(regs)}
	for _, reg := range regs {
		if err := s.generateOne(ctx, e, tpl, reg); err != nil {
			result.Failed++
			metrics.BadgesGenerated.WithLabelValues(metrics.OutcomeFailed).Inc()
			s.logger.WarnContext(ctx, "badge generation failed",
				"event_id", eventID, "registration_id", reg.ID, "err", err)
			continue
		}
		result.Generated++
		metrics.BadgesGenerated.WithLabelValues(metrics.OutcomeGenerated).Inc()
	}
	return result, nil
}

func (s *badgeService) generateOne(ctx context.Context, e *domain.Event, tpl *domain.BadgeTemplate, reg *domain.Registration) error {
	payload := s.badgeURL(reg.ConfirmationCode)
	qrData, err := s.qr.Encode(payload)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	// Only the QR payload is stored; the HTML is rendered again on view. Rendering here
	// fails the registration early when its badge cannot be produced.
	if _, err := s.renderer.Render(badgeData(e, reg, qrData)); err != nil {
		return fmt.Errorf("render badge: %w", err)
	}
	now := s.now()
	b := &domain.Badge{
		RegistrationID: reg.ID,
		TemplateID:     tpl.ID,
		QRCodeData:     payload,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.badgeRepo.Upsert(ctx, b); err != nil {
		return fmt.Errorf("save badge: %w", err)
	}
	if err := s.registrationRepo.MarkBadgeGenerated(ctx, reg.ID); err != nil {
		return fmt.Errorf("mark badge generated: %w", err)
	}
	reg.BadgeGenerated = true
	return nil
}

func badgeData(e *domain.Event, reg *domain.Registration, qrData string) domain.BadgeData {
	d := domain.BadgeData{
		EventName:        e.Name,
		ConfirmationCode: reg.ConfirmationCode,
		QRDataURL:        qrData,
	}
	if c := reg.Contact; c != nil {
		d.FirstName = c.FirstName
		d.LastName = c.LastName
		d.Organization = deref(c.Organization)
		d.Designation = deref(c.Designation)
		d.Category = deref(c.Category)
	}
	return d
}

func (s *badgeService) Send(ctx context.Context, eventID string) (*domain.BadgeSendResult, error) {
	e, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	regs, err := s.registrationRepo.ListWithBadges(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list badged registrations: %w", err)
	}

	result := &domain.BadgeSendResult{Total: len(regs)}
	for _, reg := range regs {
		if reg.Contact == nil || reg.Contact.Email == "" {
			result.Failed++
			continue
		}
		msg := badgeEmail(e, reg, s.badgeURL(reg.ConfirmationCode))
		if _, err := s.mailer.Send(ctx, msg); err != nil {
			result.Failed++
			metrics.EmailsFailed.WithLabelValues(string(domain.TemplateTypeBadgeDelivery)).Inc()
			s.logger.WarnContext(ctx, "badge email failed", "registration_id", reg.ID, "to", msg.To, "err", err)
			continue
		}
		result.Sent++
		metrics.EmailsSent.WithLabelValues(string(domain.TemplateTypeBadgeDelivery)).Inc()
	}
	return result, nil
}

func badgeEmail(e *domain.Event, reg *domain.Registration, link string) *domain.OutgoingEmail {
	name := html.EscapeString(strings.TrimSpace(reg.Contact.FirstName))
	event := html.EscapeString(e.Name)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your badge for <strong>%s</strong> is ready.</p><p><a href="%s">View and print your badge</a></p><p>Confirmation code: <strong>%s</strong></p>`,
		name, event, html.EscapeString(link), html.EscapeString(reg.ConfirmationCode),
	)
	return &domain.OutgoingEmail{
		To:      reg.Contact.Email,
		Subject: "Your badge for " + e.Name,
		HTML:    body,
		Text:    fmt.Sprintf("Your badge for %s is ready: %s (confirmation code %s)", e.Name, link, reg.ConfirmationCode),
	}
}

func (s *badgeService) Render(ctx context.Context, confirmationCode string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(confirmationCode))
	if code == "" {
		return "", domain.ErrNotFound
	}
	reg, err := s.registrationRepo.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get registration: %w", err)
	}
	e, err := s.requireEvent(ctx, reg.EventID)
	if err != nil {
		return "", err
	}
	qrData, err := s.qr.Encode(s.badgeURL(reg.ConfirmationCode))
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	out, err := s.renderer.Render(badgeData(e, reg, qrData))
	if err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}
	return out, nil
}

func (s *badgeService) GetTemplate(ctx context.Context, eventID string) (*domain.BadgeTemplate, error) {
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ensureTemplate(ctx, eventID)
}

func (s *badgeService) UpsertTemplate(ctx context.Context, eventID string, in domain.BadgeTemplateInput) (*domain.BadgeTemplate, error) {
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.DefaultBadgeTemplateName
	}
	if in.Width < 0 || in.Height < 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(in.DesignJSON) > 0 && !json.Valid(in.DesignJSON) {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	t := &domain.BadgeTemplate{
		EventID:       eventID,
		Name:          name,
		DesignJSON:    in.DesignJSON,
		Width:         in.Width,
		Height:        in.Height,
		BackgroundURL: trimmed(in.BackgroundURL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.Width == 0 {
		t.Width = domain.DefaultBadgeWidth
	}
	if t.Height == 0 {
		t.Height = domain.DefaultBadgeHeight
	}
	if len(t.DesignJSON) == 0 {
		t.DesignJSON = json.RawMessage(`{}`)
	}
	if err := s.templateRepo.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("save badge template: %w", err)
	}
	return t, nil
}
