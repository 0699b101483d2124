package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"registrationdesk/internal/domain"
)

const eventColumns = `id, name, slug, description, venue, start_date, end_date, is_active, categories, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var desc, venue sql.NullString
	var categories pq.StringArray
	dest := []any{&e.ID, &e.Name, &e.Slug, &desc, &venue, &e.StartDate, &e.EndDate, &e.IsActive, &categories, &e.CreatedAt, &e.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Description = stringPtr(desc)
	e.Venue = stringPtr(venue)
	e.Categories = []string(categories)
	if e.Categories == nil {
		e.Categories = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, slug, description, venue, start_date, end_date, is_active, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Name, e.Slug, nullString(e.Description), nullString(e.Venue), e.StartDate, e.EndDate,
		e.IsActive, pq.Array(e.Categories), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("event slug %q: %w", e.Slug, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
}

func (r *eventRepository) getOne(ctx context.Context, query string, arg string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.EventSummary, error) {
	query := `
		SELECT ` + eventColumns + `,
			(SELECT COUNT(*) FROM contacts c WHERE c.event_id = events.id),
			(SELECT COUNT(*) FROM registrations g WHERE g.event_id = events.id)
		FROM events
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EventSummary, 0)
	for rows.Next() {
		var counts domain.EventCounts
		e, err := scanEvent(rows, &counts.Contacts, &counts.Registrations)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.EventSummary{Event: e, Counts: counts})
	}
	return out, rows.Err()
}

func (r *eventRepository) Counts(ctx context.Context, id string) (domain.EventCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM contacts WHERE event_id = $1),
			(SELECT COUNT(*) FROM registrations WHERE event_id = $1),
			(SELECT COUNT(*) FROM email_templates WHERE event_id = $1),
			(SELECT COUNT(*) FROM email_campaigns WHERE event_id = $1)
	`
	var c domain.EventCounts
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.Contacts, &c.Registrations, &c.Templates, &c.Campaigns)
	return c, err
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, slug = $3, description = $4, venue = $5, start_date = $6, end_date = $7,
			is_active = $8, categories = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Slug, nullString(e.Description), nullString(e.Venue), e.StartDate, e.EndDate,
		e.IsActive, pq.Array(e.Categories), e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("event slug %q: %w", e.Slug, domain.ErrConflict)
		}
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res, domain.ErrNotFound)
}
