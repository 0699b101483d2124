package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"registrationdesk/internal/domain"
)

const contactSelect = `
	SELECT c.id, c.event_id, c.first_name, c.last_name, c.email, c.phone, c.organization, c.designation,
		c.category, c.status, c.invite_token, c.import_batch, c.metadata, c.created_at, c.updated_at,
		r.id, r.status, r.confirmation_code, r.registered_at, r.badge_generated
	FROM contacts c
	LEFT JOIN registrations r ON r.contact_id = c.id
`

type contactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{DB: db}
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	c := &domain.Contact{}
	var phone, org, designation, category, token, batch sql.NullString
	var metadata []byte
	var regID, regStatus, regCode sql.NullString
	var regAt sql.NullTime
	var regBadge sql.NullBool
	err := row.Scan(
		&c.ID, &c.EventID, &c.FirstName, &c.LastName, &c.Email, &phone, &org, &designation,
		&category, &c.Status, &token, &batch, &metadata, &c.CreatedAt, &c.UpdatedAt,
		&regID, &regStatus, &regCode, &regAt, &regBadge,
	)
	if err != nil {
		return nil, err
	}
	c.Phone = stringPtr(phone)
	c.Organization = stringPtr(org)
	c.Designation = stringPtr(designation)
	c.Category = stringPtr(category)
	c.InviteToken = stringPtr(token)
	c.ImportBatch = stringPtr(batch)
	if len(metadata) > 0 {
		c.Metadata = metadata
	}
	if regID.Valid {
		c.Registration = &domain.RegistrationSummary{
			ID:               regID.String,
			Status:           domain.RegistrationStatus(regStatus.String),
			ConfirmationCode: regCode.String,
			RegisteredAt:     regAt.Time,
			BadgeGenerated:   regBadge.Bool,
		}
	}
	return c, nil
}

func scanContacts(rows *sql.Rows) ([]*domain.Contact, error) {
	defer rows.Close()
	out := make([]*domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// contactWhere builds the WHERE clause for an event-scoped contact filter.
func contactWhere(eventID string, f domain.ContactFilter) (string, []any) {
	clauses := []string{"c.event_id = $1"}
	args := []any{eventID}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, likePattern(s))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(c.first_name ILIKE $%[1]d OR c.last_name ILIKE $%[1]d OR c.email ILIKE $%[1]d OR c.organization ILIKE $%[1]d)", n))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		clauses = append(clauses, fmt.Sprintf("c.category = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, fmt.Sprintf("c.status = $%d", len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func metadataArg(c *domain.Contact) any {
	if len(c.Metadata) == 0 {
		return nil
	}
	return string(c.Metadata)
}

func (r *contactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (event_id, first_name, last_name, email, phone, organization, designation,
			category, status, invite_token, import_batch, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		c.EventID, c.FirstName, c.LastName, c.Email, nullString(c.Phone), nullString(c.Organization),
		nullString(c.Designation), nullString(c.Category), string(c.Status), nullString(c.InviteToken),
		nullString(c.ImportBatch), metadataArg(c), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", c.Email, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *contactRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Contact, error) {
	c, err := scanContact(r.DB.QueryRowContext(ctx, contactSelect+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	return r.getOne(ctx, ` WHERE c.id = $1`, id)
}

func (r *contactRepository) GetByInviteToken(ctx context.Context, token string) (*domain.Contact, error) {
	return r.getOne(ctx, ` WHERE c.invite_token = $1`, token)
}

func (r *contactRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Contact, error) {
	return r.getOne(ctx, ` WHERE c.event_id = $1 AND c.email = $2`, eventID, strings.ToLower(strings.TrimSpace(email)))
}

func (r *contactRepository) List(ctx context.Context, eventID string, f domain.ContactFilter, page domain.PaginationParams) ([]*domain.Contact, int, error) {
	where, args := contactWhere(eventID, f)
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	query := contactSelect + where + fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *contactRepository) ListForGrouping(ctx context.Context, eventID string, f domain.ContactFilter) ([]*domain.Contact, error) {
	return listForGrouping(ctx, r.DB, eventID, f)
}

// listForGrouping is shared with the attendee snapshot transaction.
func listForGrouping(ctx context.Context, q querier, eventID string, f domain.ContactFilter) ([]*domain.Contact, error) {
	where, args := contactWhere(eventID, f)
	rows, err := q.QueryContext(ctx, contactSelect+where+` ORDER BY c.category ASC NULLS LAST, c.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (r *contactRepository) ListForExport(ctx context.Context, eventID string) ([]*domain.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, contactSelect+` WHERE c.event_id = $1 ORDER BY c.created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (r *contactRepository) ListByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, contactSelect+` WHERE c.event_id = $1 AND c.id = ANY($2) ORDER BY c.created_at ASC`, eventID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (r *contactRepository) ListByRecipientFilter(ctx context.Context, eventID string, f domain.RecipientFilter) ([]*domain.Contact, error) {
	clauses := []string{"c.event_id = $1"}
	args := []any{eventID}
	if !f.All {
		if f.Category != "" {
			args = append(args, f.Category)
			clauses = append(clauses, fmt.Sprintf("c.category = $%d", len(args)))
		}
		if f.RegistrationStatus != "" {
			args = append(args, string(f.RegistrationStatus))
			clauses = append(clauses, fmt.Sprintf("r.status = $%d", len(args)))
		}
	}
	query := contactSelect + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY c.created_at ASC"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (r *contactRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func (r *contactRepository) Update(ctx context.Context, c *domain.Contact) error {
	query := `
		UPDATE contacts
		SET first_name = $2, last_name = $3, email = $4, phone = $5, organization = $6, designation = $7,
			category = $8, status = $9, invite_token = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, nullString(c.Phone), nullString(c.Organization),
		nullString(c.Designation), nullString(c.Category), string(c.Status), nullString(c.InviteToken), c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", c.Email, domain.ErrConflict)
		}
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *contactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM email_logs WHERE contact_id = $1`, id); err != nil {
			return fmt.Errorf("delete email logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE contact_id = $1`, id); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete contact: %w", err)
		}
		return rowsAffected(res, domain.ErrNotFound)
	})
}
