package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrationdesk/internal/domain"
)

func TestSnapshotReader_ReadAttendeeSnapshot(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("reads event contacts and templates in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow("ev-1", "Tech Conference 2026", "tech-conference-2026", nil, nil, t0, t0, true, "{}", t0, t0))
		mock.ExpectQuery(`WHERE c.event_id = \$1 AND c.category = \$2 ORDER BY c.category ASC NULLS LAST`).WithArgs("ev-1", "VIP").
			WillReturnRows(sqlmock.NewRows(contactCols).
				AddRow("c-1", "ev-1", "Ana", "", "ana@example.com", nil, nil, nil, "VIP", "INVITED", nil, nil, nil, t0, t0, nil, nil, nil, nil, nil))
		mock.ExpectQuery(`FROM email_templates WHERE event_id = \$1`).WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(templateCols))
		mock.ExpectCommit()

		snap, err := NewSnapshotReader(db).ReadAttendeeSnapshot(context.Background(), "ev-1", domain.ContactFilter{Category: "VIP"})
		require.NoError(t, err)
		assert.Equal(t, "Tech Conference 2026", snap.Event.Name)
		require.Len(t, snap.Contacts, 1)
		assert.Empty(t, snap.Templates)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1`).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = NewSnapshotReader(db).ReadAttendeeSnapshot(context.Background(), "ev-1", domain.ContactFilter{})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotReader_ReadStatistics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow("ev-1", "Tech Conference 2026", "tech-conference-2026", nil, nil, t0, t0, true, "{}", t0, t0))
	mock.ExpectQuery(`SELECT category, status FROM contacts WHERE event_id = \$1`).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "status"}).
			AddRow("VIP", "REGISTERED").
			AddRow(nil, "IMPORTED"))
	mock.ExpectQuery(`FROM email_logs l JOIN email_campaigns m ON m.id = l.campaign_id WHERE m.event_id = \$1`).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"sent", "failed"}).AddRow(7, 2))
	mock.ExpectQuery(`SELECT m.id, .* t.name, t.type FROM email_campaigns m`).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, campaignCols...), "template_name", "template_type")).
			AddRow("cmp-1", "ev-1", "tpl-1", "Invite - 3/1/2026", "COMPLETED", []byte(`{}`), 9, 7, 2, nil, t0, t0, t0, "Invite", "INVITATION"))
	mock.ExpectCommit()

	snap, err := NewSnapshotReader(db).ReadStatistics(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, snap.Contacts, 2)
	assert.Nil(t, snap.Contacts[1].Category)
	assert.Equal(t, 7, snap.EmailsSent)
	assert.Equal(t, 2, snap.EmailsFailed)
	require.Len(t, snap.Campaigns, 1)
	assert.Equal(t, domain.TemplateTypeInvitation, snap.Campaigns[0].Template.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}
