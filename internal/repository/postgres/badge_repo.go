package postgres

import (
	"context"
	"database/sql"
	"errors"

	"registrationdesk/internal/domain"
)

type badgeTemplateRepository struct {
	DB *sql.DB
}

func NewBadgeTemplateRepository(db *sql.DB) domain.BadgeTemplateRepository {
	return &badgeTemplateRepository{DB: db}
}

func (r *badgeTemplateRepository) GetByEvent(ctx context.Context, eventID string) (*domain.BadgeTemplate, error) {
	query := `
		SELECT id, event_id, name, design_json, width, height, background_url, created_at, updated_at
		FROM badge_templates
		WHERE event_id = $1
	`
	t := &domain.BadgeTemplate{}
	var design []byte
	var bg sql.NullString
	err := r.DB.QueryRowContext(ctx, query, eventID).
		Scan(&t.ID, &t.EventID, &t.Name, &design, &t.Width, &t.Height, &bg, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.DesignJSON = design
	t.BackgroundURL = stringPtr(bg)
	return t, nil
}

func (r *badgeTemplateRepository) Upsert(ctx context.Context, t *domain.BadgeTemplate) error {
	design := "{}"
	if len(t.DesignJSON) > 0 {
		design = string(t.DesignJSON)
	}
	query := `
		INSERT INTO badge_templates (event_id, name, design_json, width, height, background_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO UPDATE
		SET name = EXCLUDED.name, design_json = EXCLUDED.design_json, width = EXCLUDED.width,
			height = EXCLUDED.height, background_url = EXCLUDED.background_url, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		t.EventID, t.Name, design, t.Width, t.Height, nullString(t.BackgroundURL), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID, &t.CreatedAt)
}

type badgeRepository struct {
	DB *sql.DB
}

func NewBadgeRepository(db *sql.DB) domain.BadgeRepository {
	return &badgeRepository{DB: db}
}

func (r *badgeRepository) Upsert(ctx context.Context, b *domain.Badge) error {
	query := `
		INSERT INTO badges (registration_id, template_id, qr_code_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (registration_id) DO UPDATE
		SET template_id = EXCLUDED.template_id, qr_code_data = EXCLUDED.qr_code_data, updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, b.RegistrationID, b.TemplateID, b.QRCodeData, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
}
