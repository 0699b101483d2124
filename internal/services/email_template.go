package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"registrationdesk/internal/domain"
)

type emailTemplateService struct {
	templateRepo   domain.EmailTemplateRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEmailTemplateService(templateRepo domain.EmailTemplateRepository, timeout time.Duration) domain.EmailTemplateService {
	return &emailTemplateService{templateRepo: templateRepo, contextTimeout: timeout, now: time.Now}
}

func (s *emailTemplateService) List(ctx context.Context, eventID string) ([]*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	templates, err := s.templateRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []*domain.EmailTemplate{}
	}
	return templates, nil
}

func (s *emailTemplateService) Create(ctx context.Context, eventID string, in domain.EmailTemplateInput) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if in.Name == nil || in.Type == nil || in.Subject == nil || in.BodyHTML == nil {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	t := &domain.EmailTemplate{EventID: eventID, Variables: []string{}, CreatedAt: now, UpdatedAt: now}
	if err := applyTemplateInput(t, in); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

func (s *emailTemplateService) Get(ctx context.Context, eventID, templateID string) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getInEvent(ctx, eventID, templateID)
}

func (s *emailTemplateService) getInEvent(ctx context.Context, eventID, templateID string) (*domain.EmailTemplate, error) {
	t, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if t.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *emailTemplateService) Update(ctx context.Context, eventID, templateID string, in domain.EmailTemplateInput) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.getInEvent(ctx, eventID, templateID)
	if err != nil {
		return nil, err
	}
	if err := applyTemplateInput(t, in); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()
	if err := s.templateRepo.Update(ctx, t); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

func (s *emailTemplateService) Delete(ctx context.Context, eventID, templateID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getInEvent(ctx, eventID, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func applyTemplateInput(t *domain.EmailTemplate, in domain.EmailTemplateInput) error {
	if in.Name != nil {
		if t.Name = strings.TrimSpace(*in.Name); t.Name == "" {
			return domain.ErrInvalidInput
		}
	}
	if in.Type != nil {
		if !slices.Contains(domain.TemplateTypes, *in.Type) {
			return domain.ErrInvalidInput
		}
		t.Type = *in.Type
	}
	if in.Subject != nil {
		if t.Subject = strings.TrimSpace(*in.Subject); t.Subject == "" {
			return domain.ErrInvalidInput
		}
	}
	if in.BodyHTML != nil {
		if strings.TrimSpace(*in.BodyHTML) == "" {
			return domain.ErrInvalidInput
		}
		t.BodyHTML = *in.BodyHTML
	}
	if in.HeaderHTML != nil {
		t.HeaderHTML = optional(*in.HeaderHTML)
	}
	if in.FooterHTML != nil {
		t.FooterHTML = optional(*in.FooterHTML)
	}
	if in.Variables != nil {
		t.Variables = in.Variables
	}
	return nil
}
