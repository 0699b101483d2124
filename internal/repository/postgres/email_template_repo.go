package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"registrationdesk/internal/domain"
)

const templateColumns = `id, event_id, name, type, subject, body_html, header_html, footer_html, variables, created_at, updated_at`

type emailTemplateRepository struct {
	DB *sql.DB
}

func NewEmailTemplateRepository(db *sql.DB) domain.EmailTemplateRepository {
	return &emailTemplateRepository{DB: db}
}

func scanTemplate(row rowScanner) (*domain.EmailTemplate, error) {
	t := &domain.EmailTemplate{}
	var header, footer sql.NullString
	var vars pq.StringArray
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.Type, &t.Subject, &t.BodyHTML, &header, &footer, &vars, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.HeaderHTML = stringPtr(header)
	t.FooterHTML = stringPtr(footer)
	t.Variables = []string(vars)
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return t, nil
}

func (r *emailTemplateRepository) Create(ctx context.Context, t *domain.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (event_id, name, type, subject, body_html, header_html, footer_html, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.EventID, t.Name, string(t.Type), t.Subject, t.BodyHTML, nullString(t.HeaderHTML), nullString(t.FooterHTML),
		pq.Array(t.Variables), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *emailTemplateRepository) GetByID(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *emailTemplateRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.EmailTemplate, error) {
	return listTemplates(ctx, r.DB, eventID)
}

func listTemplates(ctx context.Context, q querier, eventID string) ([]*domain.EmailTemplate, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EmailTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *emailTemplateRepository) Update(ctx context.Context, t *domain.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET name = $2, type = $3, subject = $4, body_html = $5, header_html = $6, footer_html = $7,
			variables = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		t.ID, t.Name, string(t.Type), t.Subject, t.BodyHTML, nullString(t.HeaderHTML), nullString(t.FooterHTML),
		pq.Array(t.Variables), t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *emailTemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}
