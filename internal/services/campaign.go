package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"registrationdesk/internal/domain"
)

// campaignLogLimit bounds the logs returned with a campaign.
const campaignLogLimit = 100

type campaignService struct {
	campaignRepo   domain.CampaignRepository
	templateRepo   domain.EmailTemplateRepository
	logRepo        domain.EmailLogRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewCampaignService(campaignRepo domain.CampaignRepository, templateRepo domain.EmailTemplateRepository, logRepo domain.EmailLogRepository, timeout time.Duration) domain.CampaignService {
	return &campaignService{
		campaignRepo:   campaignRepo,
		templateRepo:   templateRepo,
		logRepo:        logRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *campaignService) List(ctx context.Context, eventID string) ([]*domain.EmailCampaign, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	campaigns, err := s.campaignRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []*domain.EmailCampaign{}
	}
	return campaigns, nil
}

func (s *campaignService) Create(ctx context.Context, eventID string, in domain.CreateCampaignInput) (*domain.EmailCampaign, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name := strings.TrimSpace(in.Name)
	if name == "" || in.TemplateID == "" {
		return nil, domain.ErrInvalidInput
	}
	if rs := in.RecipientFilter.RegistrationStatus; rs != "" && !rs.Valid() {
		return nil, domain.ErrInvalidInput
	}
	tpl, err := s.templateRepo.GetByID(ctx, in.TemplateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("email template not found: %w", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tpl.EventID != eventID {
		return nil, fmt.Errorf("email template not found: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	c := &domain.EmailCampaign{
		EventID:         eventID,
		TemplateID:      tpl.ID,
		Name:            name,
		Status:          domain.CampaignStatusDraft,
		RecipientFilter: in.RecipientFilter,
		ScheduledAt:     in.ScheduledAt,
		Template:        tpl,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

func (s *campaignService) getInEvent(ctx context.Context, eventID, campaignID string) (*domain.EmailCampaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if c.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *campaignService) Get(ctx context.Context, eventID, campaignID string) (*domain.CampaignDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.getInEvent(ctx, eventID, campaignID)
	if err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByCampaign(ctx, campaignID, campaignLogLimit)
	if err != nil {
		return nil, fmt.Errorf("list campaign logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.EmailLog{}
	}
	return &domain.CampaignDetail{EmailCampaign: c, Logs: logs}, nil
}

func (s *campaignService) Delete(ctx context.Context, eventID, campaignID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getInEvent(ctx, eventID, campaignID); err != nil {
		return err
	}
	if err := s.campaignRepo.Delete(ctx, campaignID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}
