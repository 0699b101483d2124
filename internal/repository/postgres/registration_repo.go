package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"registrationdesk/internal/domain"
)

const registrationColumns = `g.id, g.contact_id, g.event_id, g.status, g.confirmation_code, g.registered_at, g.badge_generated, g.created_at, g.updated_at`

const registrationWithContactSelect = `
	SELECT ` + registrationColumns + `,
		c.id, c.event_id, c.first_name, c.last_name, c.email, c.phone, c.organization, c.designation,
		c.category, c.status, c.invite_token, c.import_batch, c.created_at, c.updated_at
	FROM registrations g
	JOIN contacts c ON c.id = g.contact_id
`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func registrationDest(reg *domain.Registration) []any {
	return []any{&reg.ID, &reg.ContactID, &reg.EventID, &reg.Status, &reg.ConfirmationCode, &reg.RegisteredAt, &reg.BadgeGenerated, &reg.CreatedAt, &reg.UpdatedAt}
}

func scanRegistrationWithContact(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	c := &domain.Contact{}
	var phone, org, designation, category, token, batch sql.NullString
	dest := append(registrationDest(reg),
		&c.ID, &c.EventID, &c.FirstName, &c.LastName, &c.Email, &phone, &org, &designation,
		&category, &c.Status, &token, &batch, &c.CreatedAt, &c.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Phone = stringPtr(phone)
	c.Organization = stringPtr(org)
	c.Designation = stringPtr(designation)
	c.Category = stringPtr(category)
	c.InviteToken = stringPtr(token)
	c.ImportBatch = stringPtr(batch)
	reg.Contact = c
	return reg, nil
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistrationWithContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (contact_id, event_id, status, confirmation_code, registered_at, badge_generated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.ContactID, reg.EventID, string(reg.Status), reg.ConfirmationCode, reg.RegisteredAt,
		reg.BadgeGenerated, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("registration: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByContactID(ctx context.Context, contactID string) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations g WHERE g.contact_id = $1`, contactID).
		Scan(registrationDest(reg)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Registration, error) {
	reg, err := scanRegistrationWithContact(r.DB.QueryRowContext(ctx, registrationWithContactSelect+` WHERE g.confirmation_code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	if status != "" {
		return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 AND g.status = $2 ORDER BY g.registered_at DESC`, eventID, string(status))
	}
	return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 ORDER BY g.registered_at DESC`, eventID)
}

func (r *registrationRepository) ListForExport(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 ORDER BY g.registered_at ASC`, eventID)
}

func (r *registrationRepository) ListConfirmed(ctx context.Context, eventID string, ids []string) ([]*domain.Registration, error) {
	if len(ids) > 0 {
		return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 AND g.status = 'CONFIRMED' AND g.id = ANY($2) ORDER BY g.registered_at ASC`, eventID, pq.Array(ids))
	}
	return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 AND g.status = 'CONFIRMED' ORDER BY g.registered_at ASC`, eventID)
}

func (r *registrationRepository) ListWithBadges(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return r.list(ctx, registrationWithContactSelect+` WHERE g.event_id = $1 AND g.status = 'CONFIRMED' AND g.badge_generated ORDER BY g.registered_at ASC`, eventID)
}

func (r *registrationRepository) MarkBadgeGenerated(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE registrations SET badge_generated = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}
