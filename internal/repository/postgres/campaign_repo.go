package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"registrationdesk/internal/domain"
)

const campaignColumns = `m.id, m.event_id, m.template_id, m.name, m.status, m.recipient_filter, m.total_recipients,
	m.sent_count, m.failed_count, m.scheduled_at, m.sent_at, m.created_at, m.updated_at`

type campaignRepository struct {
	DB *sql.DB
}

func NewCampaignRepository(db *sql.DB) domain.CampaignRepository {
	return &campaignRepository{DB: db}
}

func scanCampaign(row rowScanner, extra ...any) (*domain.EmailCampaign, error) {
	c := &domain.EmailCampaign{}
	var filter []byte
	var scheduled, sent sql.NullTime
	dest := []any{&c.ID, &c.EventID, &c.TemplateID, &c.Name, &c.Status, &filter, &c.TotalRecipients,
		&c.SentCount, &c.FailedCount, &scheduled, &sent, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		if err := json.Unmarshal(filter, &c.RecipientFilter); err != nil {
			return nil, fmt.Errorf("decode recipient filter: %w", err)
		}
	}
	c.ScheduledAt = timePtr(scheduled)
	c.SentAt = timePtr(sent)
	return c, nil
}

func (r *campaignRepository) Create(ctx context.Context, c *domain.EmailCampaign) error {
	filter, err := json.Marshal(c.RecipientFilter)
	if err != nil {
		return fmt.Errorf("encode recipient filter: %w", err)
	}
	query := `
		INSERT INTO email_campaigns (event_id, template_id, name, status, recipient_filter, total_recipients,
			sent_count, failed_count, scheduled_at, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		c.EventID, c.TemplateID, c.Name, string(c.Status), string(filter), c.TotalRecipients,
		c.SentCount, c.FailedCount, nullTime(c.ScheduledAt), nullTime(c.SentAt), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*domain.EmailCampaign, error) {
	query := `
		SELECT ` + campaignColumns + `,
			t.id, t.event_id, t.name, t.type, t.subject, t.body_html, t.header_html, t.footer_html, t.variables, t.created_at, t.updated_at
		FROM email_campaigns m
		JOIN email_templates t ON t.id = m.template_id
		WHERE m.id = $1
	`
	row := r.DB.QueryRowContext(ctx, query, id)
	tpl := &templateDest{}
	c, err := scanCampaign(row, tpl.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Template = tpl.template()
	return c, nil
}

// templateDest collects joined email_templates columns scanned alongside another row.
type templateDest struct {
	t              domain.EmailTemplate
	header, footer sql.NullString
	vars           pq.StringArray
}

func (d *templateDest) dest() []any {
	return []any{&d.t.ID, &d.t.EventID, &d.t.Name, &d.t.Type, &d.t.Subject, &d.t.BodyHTML, &d.header, &d.footer, &d.vars, &d.t.CreatedAt, &d.t.UpdatedAt}
}

func (d *templateDest) template() *domain.EmailTemplate {
	t := d.t
	t.HeaderHTML = stringPtr(d.header)
	t.FooterHTML = stringPtr(d.footer)
	t.Variables = []string(d.vars)
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return &t
}

func (r *campaignRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.EmailCampaign, error) {
	return listCampaigns(ctx, r.DB, eventID)
}

func listCampaigns(ctx context.Context, q querier, eventID string) ([]*domain.EmailCampaign, error) {
	query := `
		SELECT ` + campaignColumns + `, t.name, t.type
		FROM email_campaigns m
		JOIN email_templates t ON t.id = m.template_id
		WHERE m.event_id = $1
		ORDER BY m.created_at DESC
	`
	rows, err := q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EmailCampaign, 0)
	for rows.Next() {
		tpl := &domain.EmailTemplate{}
		c, err := scanCampaign(rows, &tpl.Name, &tpl.Type)
		if err != nil {
			return nil, err
		}
		tpl.ID = c.TemplateID
		tpl.EventID = c.EventID
		c.Template = tpl
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *campaignRepository) UpdateProgress(ctx context.Context, c *domain.EmailCampaign) error {
	query := `
		UPDATE email_campaigns
		SET status = $2, total_recipients = $3, sent_count = $4, failed_count = $5, sent_at = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, string(c.Status), c.TotalRecipients, c.SentCount, c.FailedCount, nullTime(c.SentAt), c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}
