package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"registrationdesk/internal/domain"
)

// exportTimeLayout renders timestamps as ISO-8601 UTC with milliseconds.
const exportTimeLayout = "2006-01-02T15:04:05.000Z"

var contactExportHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "Organization", "Designation", "Category", "Registration Status", "Registered At",
}

type contactService struct {
	eventRepo      domain.EventRepository
	contactRepo    domain.ContactRepository
	logRepo        domain.EmailLogRepository
	snapshots      domain.AttendeeSnapshotReader
	contextTimeout time.Duration
	now            func() time.Time
}

func NewContactService(
	eventRepo domain.EventRepository,
	contactRepo domain.ContactRepository,
	logRepo domain.EmailLogRepository,
	snapshots domain.AttendeeSnapshotReader,
	timeout time.Duration,
) domain.ContactService {
	return &contactService{
		eventRepo:      eventRepo,
		contactRepo:    contactRepo,
		logRepo:        logRepo,
		snapshots:      snapshots,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *contactService) requireEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *contactService) List(ctx context.Context, eventID string, filter domain.ContactFilter, page domain.PaginationParams) (*domain.ContactPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	contacts, total, err := s.contactRepo.List(ctx, eventID, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	return &domain.ContactPage{Contacts: contacts, Total: total}, nil
}

func (s *contactService) ListGrouped(ctx context.Context, eventID string, filter domain.ContactFilter) (*domain.GroupedContacts, error) {
	contacts, err := s.contactRepo.ListForGrouping(ctx, eventID, filter)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return GroupContacts(contacts), nil
}

// GroupContacts buckets contacts by category in order of first occurrence and counts statuses.
func GroupContacts(contacts []*domain.Contact) *domain.GroupedContacts {
	out := &domain.GroupedContacts{Groups: []*domain.ContactGroup{}, Total: len(contacts)}
	byName := make(map[string]*domain.ContactGroup)
	for _, c := range contacts {
		name := c.GroupName()
		g, ok := byName[name]
		if !ok {
			g = &domain.ContactGroup{Category: name, Contacts: []*domain.Contact{}}
			byName[name] = g
			out.Groups = append(out.Groups, g)
		}
		g.Contacts = append(g.Contacts, c)
		g.Count++
		out.StatusCounts.Add(c.Status)
	}
	return out
}

func (s *contactService) AttendeeOverview(ctx context.Context, eventID string, filter domain.ContactFilter) (*domain.AttendeeOverview, error) {
	snap, err := s.snapshots.ReadAttendeeSnapshot(ctx, eventID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read attendee snapshot: %w", err)
	}
	grouped := GroupContacts(snap.Contacts)
	templates := snap.Templates
	if templates == nil {
		templates = []*domain.EmailTemplate{}
	}
	return &domain.AttendeeOverview{
		Event:        snap.Event,
		Templates:    templates,
		Groups:       grouped.Groups,
		StatusCounts: grouped.StatusCounts,
		Total:        grouped.Total,
	}, nil
}

func (s *contactService) Create(ctx context.Context, eventID string, in domain.CreateContactInput) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	firstName := strings.TrimSpace(in.FirstName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if firstName == "" || email == "" {
		return nil, domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = domain.ContactStatusImported
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	now := s.now()
	c := &domain.Contact{
		EventID:      eventID,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        trimmed(in.Phone),
		Organization: trimmed(in.Organization),
		Designation:  trimmed(in.Designation),
		Category:     trimmed(in.Category),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.contactRepo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

// getInEvent loads a contact and hides contacts that belong to another event.
func (s *contactService) getInEvent(ctx context.Context, eventID, contactID string) (*domain.Contact, error) {
	c, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if c.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *contactService) Get(ctx context.Context, eventID, contactID string) (*domain.ContactDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.getInEvent(ctx, eventID, contactID)
	if err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.EmailLog{}
	}
	e, err := s.requireEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &domain.ContactDetail{Contact: c, EmailLogs: logs, Event: e}, nil
}

func (s *contactService) Update(ctx context.Context, eventID, contactID string, upd domain.ContactUpdate) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.getInEvent(ctx, eventID, contactID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		v := strings.TrimSpace(*upd.FirstName)
		if v == "" {
			return nil, domain.ErrInvalidInput
		}
		c.FirstName = v
	}
	if upd.LastName != nil {
		c.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*upd.Email))
		if v == "" {
			return nil, domain.ErrInvalidInput
		}
		c.Email = v
	}
	if upd.Phone != nil {
		c.Phone = trimmed(upd.Phone)
	}
	if upd.Organization != nil {
		c.Organization = trimmed(upd.Organization)
	}
	if upd.Designation != nil {
		c.Designation = trimmed(upd.Designation)
	}
	if upd.Category != nil {
		c.Category = trimmed(upd.Category)
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, domain.ErrInvalidInput
		}
		c.Status = *upd.Status
	}
	c.UpdatedAt = s.now()
	if err := s.contactRepo.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrConflict):
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

func (s *contactService) Delete(ctx context.Context, eventID, contactID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getInEvent(ctx, eventID, contactID); err != nil {
		return err
	}
	if err := s.contactRepo.Delete(ctx, contactID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *contactService) ExportRows(ctx context.Context, eventID string) ([]domain.ContactExportRow, error) {
	if _, err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.ListForExport(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	rows := make([]domain.ContactExportRow, 0, len(contacts))
	for _, c := range contacts {
		row := domain.ContactExportRow{
			FirstName:          c.FirstName,
			LastName:           c.LastName,
			Email:              c.Email,
			Phone:              deref(c.Phone),
			Organization:       deref(c.Organization),
			Designation:        deref(c.Designation),
			Category:           deref(c.Category),
			RegistrationStatus: domain.NotRegistered,
		}
		if c.Registration != nil {
			row.RegistrationStatus = string(c.Registration.Status)
			row.RegisteredAt = formatExportTime(c.Registration.RegisteredAt)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *contactService) ExportCSV(ctx context.Context, eventID string) ([]byte, error) {
	rows, err := s.ExportRows(ctx, eventID)
	if err != nil {
		return nil, err
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.FirstName, r.LastName, r.Email, r.Phone, r.Organization, r.Designation, r.Category, r.RegistrationStatus, r.RegisteredAt,
		})
	}
	return writeCSV(contactExportHeader, records)
}

func writeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimmed returns nil for nil or blank input, otherwise the trimmed value.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(strings.TrimSpace(*s))
}
