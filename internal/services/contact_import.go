package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"registrationdesk/internal/domain"
	"registrationdesk/internal/metrics"
)

type importService struct {
	eventRepo   domain.EventRepository
	contactRepo domain.ContactRepository
	parser      domain.TabularParser
	maxFileSize int64
	logger      *slog.Logger
	now         func() time.Time
}

// NewImportService returns an ImportService. Files above maxFileSize bytes are rejected; zero disables the check.
func NewImportService(eventRepo domain.EventRepository, contactRepo domain.ContactRepository, parser domain.TabularParser, maxFileSize int64, logger *slog.Logger) domain.ImportService {
	return &importService{
		eventRepo:   eventRepo,
		contactRepo: contactRepo,
		parser:      parser,
		maxFileSize: maxFileSize,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *importService) Import(ctx context.Context, eventID string, file domain.ImportFile, mapping domain.FieldMapping, defaultCategory string) (*domain.ImportResult, error) {
	if s.maxFileSize > 0 && int64(len(file.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes: %w", s.maxFileSize, domain.ErrInvalidInput)
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	rows, err := s.parser.Parse(file)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("parse %s: %w", file.Name, errors.Join(domain.ErrInvalidInput, err))
	}

	batch := uuid.NewString()
	result := &domain.ImportResult{ImportBatch: batch, Errors: []string{}}
	result.Summary.Total = len(rows)
	var rowErrors []string

	for _, row := range rows {
		n, ok := NormalizeRow(row, mapping, defaultCategory)
		if !ok {
			result.Summary.Skipped++
			metrics.ContactsImported.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}
		raw, err := json.Marshal(row)
		if err != nil {
			raw = nil
		}
		now := s.now()
		c := &domain.Contact{
			EventID:      eventID,
			FirstName:    n.FirstName,
			LastName:     n.LastName,
			Email:        n.Email,
			Phone:        n.Phone,
			Organization: n.Organization,
			Designation:  n.Designation,
			Category:     n.Category,
			Status:       domain.ContactStatusImported,
			ImportBatch:  &batch,
			Metadata:     raw,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.contactRepo.Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				result.Summary.Skipped++
				metrics.ContactsImported.WithLabelValues(metrics.OutcomeSkipped).Inc()
				continue
			}
			result.Summary.Errors++
			rowErrors = append(rowErrors, fmt.Sprintf("Row with email %s: %v", n.Email, err))
			metrics.ContactsImported.WithLabelValues(metrics.OutcomeError).Inc()
			s.logger.WarnContext(ctx, "import row failed", "event_id", eventID, "email", n.Email, "err", err)
			continue
		}
		result.Summary.Created++
		metrics.ContactsImported.WithLabelValues(metrics.OutcomeCreated).Inc()
	}

	if len(rowErrors) > domain.MaxSurfacedImportErrors {
		rowErrors = rowErrors[:domain.MaxSurfacedImportErrors]
	}
	if rowErrors != nil {
		result.Errors = rowErrors
	}
	result.Success = true
	s.logger.InfoContext(ctx, "contacts imported",
		"event_id", eventID, "file", file.Name, "import_batch", batch,
		"total", result.Summary.Total, "created", result.Summary.Created,
		"skipped", result.Summary.Skipped, "errors", result.Summary.Errors)
	return result, nil
}
