package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"registrationdesk/internal/domain"
)

const emailLogColumns = `l.id, l.campaign_id, l.contact_id, l.to_email, l.subject, l.status, l.sent_at, l.error_message, l.provider_message_id, l.created_at`

type emailLogRepository struct {
	DB *sql.DB
}

func NewEmailLogRepository(db *sql.DB) domain.EmailLogRepository {
	return &emailLogRepository{DB: db}
}

func scanEmailLog(row rowScanner, extra ...any) (*domain.EmailLog, error) {
	l := &domain.EmailLog{}
	var sentAt sql.NullTime
	var errMsg, providerID sql.NullString
	dest := []any{&l.ID, &l.CampaignID, &l.ContactID, &l.ToEmail, &l.Subject, &l.Status, &sentAt, &errMsg, &providerID, &l.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	l.SentAt = timePtr(sentAt)
	l.ErrorMessage = stringPtr(errMsg)
	l.ProviderMessageID = stringPtr(providerID)
	return l, nil
}

func (r *emailLogRepository) Create(ctx context.Context, l *domain.EmailLog) error {
	query := `
		INSERT INTO email_logs (campaign_id, contact_id, to_email, subject, status, sent_at, error_message, provider_message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		l.CampaignID, l.ContactID, l.ToEmail, l.Subject, string(l.Status), nullTime(l.SentAt),
		nullString(l.ErrorMessage), nullString(l.ProviderMessageID), l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email log %s/%s: %w", l.CampaignID, l.ContactID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *emailLogRepository) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*domain.EmailLog, error) {
	query := `
		SELECT ` + emailLogColumns + `, c.first_name, c.last_name, c.email
		FROM email_logs l
		JOIN contacts c ON c.id = l.contact_id
		WHERE l.campaign_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EmailLog, 0)
	for rows.Next() {
		c := &domain.Contact{}
		l, err := scanEmailLog(rows, &c.FirstName, &c.LastName, &c.Email)
		if err != nil {
			return nil, err
		}
		c.ID = l.ContactID
		l.Contact = c
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *emailLogRepository) ListByContact(ctx context.Context, contactID string) ([]*domain.EmailLog, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+emailLogColumns+` FROM email_logs l WHERE l.contact_id = $1 ORDER BY l.sent_at DESC NULLS LAST, l.created_at DESC`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EmailLog, 0)
	for rows.Next() {
		l, err := scanEmailLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *emailLogRepository) LoggedContactIDs(ctx context.Context, campaignID string) (map[string]struct{}, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT contact_id FROM email_logs WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *emailLogRepository) CountByStatus(ctx context.Context, campaignID string) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'SENT'),
			COUNT(*) FILTER (WHERE status = 'FAILED')
		FROM email_logs
		WHERE campaign_id = $1
	`
	var sent, failed int
	if err := r.DB.QueryRowContext(ctx, query, campaignID).Scan(&sent, &failed); err != nil {
		return 0, 0, err
	}
	return sent, failed, nil
}
