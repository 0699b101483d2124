package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"registrationdesk/internal/domain"
)

// SnapshotReader serves the dashboard pages that need several reads to agree with each other.
// It implements domain.AttendeeSnapshotReader and domain.StatisticsReader.
type SnapshotReader struct {
	DB *sql.DB
}

func NewSnapshotReader(db *sql.DB) *SnapshotReader {
	return &SnapshotReader{DB: db}
}

var readOnly = &sql.TxOptions{ReadOnly: true}

func getEventTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Event, error) {
	e, err := scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *SnapshotReader) ReadAttendeeSnapshot(ctx context.Context, eventID string, filter domain.ContactFilter) (*domain.AttendeeSnapshot, error) {
	snap := &domain.AttendeeSnapshot{}
	err := withTx(ctx, r.DB, readOnly, func(tx *sql.Tx) error {
		e, err := getEventTx(ctx, tx, eventID)
		if err != nil {
			return err
		}
		snap.Event = e
		if snap.Contacts, err = listForGrouping(ctx, tx, eventID, filter); err != nil {
			return fmt.Errorf("list contacts: %w", err)
		}
		if snap.Templates, err = listTemplates(ctx, tx, eventID); err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotReader) ReadStatistics(ctx context.Context, eventID string) (*domain.StatisticsSnapshot, error) {
	snap := &domain.StatisticsSnapshot{}
	err := withTx(ctx, r.DB, readOnly, func(tx *sql.Tx) error {
		e, err := getEventTx(ctx, tx, eventID)
		if err != nil {
			return err
		}
		snap.Event = e

		if snap.Contacts, err = listContactStats(ctx, tx, eventID); err != nil {
			return fmt.Errorf("list contact stats: %w", err)
		}

		query := `
			SELECT
				COUNT(*) FILTER (WHERE l.status = 'SENT'),
				COUNT(*) FILTER (WHERE l.status = 'FAILED')
			FROM email_logs l
			JOIN email_campaigns m ON m.id = l.campaign_id
			WHERE m.event_id = $1
		`
		if err := tx.QueryRowContext(ctx, query, eventID).Scan(&snap.EmailsSent, &snap.EmailsFailed); err != nil {
			return fmt.Errorf("count emails: %w", err)
		}
		if snap.Campaigns, err = listCampaigns(ctx, tx, eventID); err != nil {
			return fmt.Errorf("list campaigns: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func listContactStats(ctx context.Context, q querier, eventID string) ([]domain.ContactStat, error) {
	rows, err := q.QueryContext(ctx, `SELECT category, status FROM contacts WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.ContactStat, 0)
	for rows.Next() {
		var category sql.NullString
		var st domain.ContactStat
		if err := rows.Scan(&category, &st.Status); err != nil {
			return nil, err
		}
		st.Category = stringPtr(category)
		out = append(out, st)
	}
	return out, rows.Err()
}
