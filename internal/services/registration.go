package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"registrationdesk/internal/domain"
)

const (
	confirmationCodeLength   = 10
	confirmationCodeAttempts = 5
	inviteTokenBytes         = 16
)

var confirmationCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

var registrationExportHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "Organization", "Designation", "Category", "Status", "Registered At", "Confirmation Code",
}

type registrationService struct {
	eventRepo        domain.EventRepository
	contactRepo      domain.ContactRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
	now              func() time.Time
	newCode          func() (string, error)
}

func NewRegistrationService(eventRepo domain.EventRepository, contactRepo domain.ContactRepository, registrationRepo domain.RegistrationRepository, timeout time.Duration) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		contactRepo:      contactRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
		now:              time.Now,
		newCode:          generateConfirmationCode,
	}
}

func generateConfirmationCode() (string, error) {
	b := make([]rune, confirmationCodeLength)
	max := big.NewInt(int64(len(confirmationCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = confirmationCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// activeEvent resolves a public slug. Inactive events are reported as not found.
func (s *registrationService) activeEvent(ctx context.Context, slug string) (*domain.Event, error) {
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !e.IsActive {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *registrationService) Page(ctx context.Context, slug, token string) (*domain.RegistrationPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.activeEvent(ctx, slug)
	if err != nil {
		return nil, err
	}
	page := &domain.RegistrationPage{Event: domain.PublicEvent{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Venue:       e.Venue,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
	}}
	if token == "" {
		return page, nil
	}
	c, err := s.contactRepo.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get contact by token: %w", err)
	}
	if c.EventID != e.ID {
		return nil, domain.ErrNotFound
	}
	page.Contact = &domain.InvitePrefill{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Phone:        c.Phone,
		Organization: c.Organization,
		Designation:  c.Designation,
		Category:     c.Category,
	}
	return page, nil
}

// findContact resolves the registering contact by invite token, then by email.
func (s *registrationService) findContact(ctx context.Context, eventID, token, email string) (*domain.Contact, error) {
	if token != "" {
		c, err := s.contactRepo.GetByInviteToken(ctx, token)
		switch {
		case err == nil && c.EventID == eventID:
			return c, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("get contact by token: %w", err)
		}
	}
	c, err := s.contactRepo.GetByEventAndEmail(ctx, eventID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact by email: %w", err)
	}
	return c, nil
}

func (s *registrationService) Register(ctx context.Context, slug, token string, in domain.RegistrationInput) (*domain.Registration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in = trimRegistrationInput(in)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" || in.Organization == "" || in.Designation == "" {
		return nil, false, domain.ErrInvalidInput
	}
	e, err := s.activeEvent(ctx, slug)
	if err != nil {
		return nil, false, err
	}

	c, err := s.findContact(ctx, e.ID, token, in.Email)
	if err != nil {
		return nil, false, err
	}

	if c != nil && c.Registration != nil {
		if c.Status == domain.ContactStatusRegistered {
			existing, err := s.registrationRepo.GetByContactID(ctx, c.ID)
			if err != nil {
				return nil, false, fmt.Errorf("get registration: %w", err)
			}
			return existing, false, nil
		}
		// Status was reset by an organizer; the old registration goes.
		if err := s.registrationRepo.Delete(ctx, c.Registration.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("delete stale registration: %w", err)
		}
		c.Registration = nil
	}

	now := s.now()
	if c == nil {
		inviteToken, err := generateInviteToken()
		if err != nil {
			return nil, false, fmt.Errorf("generate invite token: %w", err)
		}
		c = &domain.Contact{
			EventID:      e.ID,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			Phone:        optional(in.Phone),
			Organization: optional(in.Organization),
			Designation:  optional(in.Designation),
			Status:       domain.ContactStatusImported,
			InviteToken:  &inviteToken,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.contactRepo.Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, false, domain.ErrConflict
			}
			return nil, false, fmt.Errorf("create contact: %w", err)
		}
	} else {
		c.FirstName = in.FirstName
		c.LastName = in.LastName
		c.Email = in.Email
		if in.Phone != "" {
			c.Phone = &in.Phone
		}
		if in.Organization != "" {
			c.Organization = &in.Organization
		}
		if in.Designation != "" {
			c.Designation = &in.Designation
		}
		c.UpdatedAt = now
		if err := s.contactRepo.Update(ctx, c); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, false, domain.ErrConflict
			}
			return nil, false, fmt.Errorf("update contact: %w", err)
		}
	}

	reg, err := s.createRegistration(ctx, c, now)
	if err != nil {
		return nil, false, err
	}
	if err := s.contactRepo.UpdateStatus(ctx, c.ID, domain.ContactStatusRegistered); err != nil {
		return nil, false, fmt.Errorf("mark contact registered: %w", err)
	}
	c.Status = domain.ContactStatusRegistered
	reg.Contact = c
	return reg, true, nil
}

// createRegistration inserts a CONFIRMED registration, drawing a new code on collision.
func (s *registrationService) createRegistration(ctx context.Context, c *domain.Contact, now time.Time) (*domain.Registration, error) {
	for attempt := 0; attempt < confirmationCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate confirmation code: %w", err)
		}
		reg := &domain.Registration{
			ContactID:        c.ID,
			EventID:          c.EventID,
			Status:           domain.RegistrationStatusConfirmed,
			ConfirmationCode: code,
			RegisteredAt:     now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		err = s.registrationRepo.Create(ctx, reg)
		if err == nil {
			return reg, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("create registration: %w", err)
		}
	}
	return nil, fmt.Errorf("confirmation code retries exhausted: %w", domain.ErrConflict)
}

func trimRegistrationInput(in domain.RegistrationInput) domain.RegistrationInput {
	return domain.RegistrationInput{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		Organization: strings.TrimSpace(in.Organization),
		Designation:  strings.TrimSpace(in.Designation),
	}
}

func (s *registrationService) List(ctx context.Context, eventID string, status domain.RegistrationStatus, search string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	regs, err := s.registrationRepo.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*domain.Registration, 0, len(regs))
	for _, r := range regs {
		if q == "" || registrationMatches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func registrationMatches(r *domain.Registration, q string) bool {
	c := r.Contact
	if c == nil {
		return strings.Contains(strings.ToLower(r.ConfirmationCode), q)
	}
	for _, v := range []string{c.FirstName, c.LastName, c.Email, deref(c.Organization), r.ConfirmationCode} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func (s *registrationService) Stats(ctx context.Context, eventID string) (*domain.RegistrationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByEvent(ctx, eventID, "")
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	totalContacts, err := s.contactRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	stats := &domain.RegistrationStats{Total: len(regs), TotalContacts: totalContacts}
	for _, r := range regs {
		switch r.Status {
		case domain.RegistrationStatusConfirmed:
			stats.Confirmed++
		case domain.RegistrationStatusPending:
			stats.Pending++
		case domain.RegistrationStatusCancelled:
			stats.Cancelled++
		}
	}
	stats.ConversionRate = percent(stats.Total, totalContacts)
	return stats, nil
}

// percent returns part/whole as a rounded percentage, or 0 for an empty whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func (s *registrationService) ExportCSV(ctx context.Context, eventID string) ([]byte, error) {
	regs, err := s.registrationRepo.ListForExport(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	records := make([][]string, 0, len(regs))
	for _, r := range regs {
		c := r.Contact
		if c == nil {
			c = &domain.Contact{}
		}
		records = append(records, []string{
			c.FirstName, c.LastName, c.Email, deref(c.Phone), deref(c.Organization), deref(c.Designation),
			deref(c.Category), string(r.Status), formatExportTime(r.RegisteredAt), r.ConfirmationCode,
		})
	}
	return writeCSV(registrationExportHeader, records)
}
