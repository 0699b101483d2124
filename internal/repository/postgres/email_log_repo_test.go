package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrationdesk/internal/domain"
)

func TestEmailLogRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "sent",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO email_logs`).
					WithArgs("cmp-1", "c-1", "ana@example.com", "Hello", "SENT", now, nil, "msg-1", now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("log-1"))
			},
		},
		{
			name: "pair already logged",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO email_logs`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			l := &domain.EmailLog{
				CampaignID: "cmp-1", ContactID: "c-1", ToEmail: "ana@example.com", Subject: "Hello",
				Status: domain.EmailLogStatusSent, SentAt: &now, ProviderMessageID: strPtr("msg-1"), CreatedAt: now,
			}
			err = NewEmailLogRepository(db).Create(context.Background(), l)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "log-1", l.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmailLogRepository_ListByCampaign(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM email_logs l JOIN contacts c ON c.id = l.contact_id WHERE l.campaign_id = \$1 ORDER BY l.created_at DESC LIMIT \$2`).
		WithArgs("cmp-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "contact_id", "to_email", "subject", "status", "sent_at", "error_message", "provider_message_id", "created_at", "first_name", "last_name", "email"}).
			AddRow("log-1", "cmp-1", "c-1", "ana@example.com", "Hello", "FAILED", nil, "mailbox full", nil, t0, "Ana", "Lima", "ana@example.com"))

	logs, err := NewEmailLogRepository(db).ListByCampaign(context.Background(), "cmp-1", 100)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.EmailLogStatusFailed, logs[0].Status)
	assert.Equal(t, "mailbox full", *logs[0].ErrorMessage)
	assert.Nil(t, logs[0].SentAt)
	assert.Equal(t, "Ana", logs[0].Contact.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailLogRepository_LoggedContactIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT contact_id FROM email_logs WHERE campaign_id = \$1`).WithArgs("cmp-1").
		WillReturnRows(sqlmock.NewRows([]string{"contact_id"}).AddRow("c-1").AddRow("c-2"))

	ids, err := NewEmailLogRepository(db).LoggedContactIDs(context.Background(), "cmp-1")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "c-2")
}

func TestEmailLogRepository_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE status = 'SENT'\)`).WithArgs("cmp-1").
		WillReturnRows(sqlmock.NewRows([]string{"sent", "failed"}).AddRow(4, 1))

	sent, failed, err := NewEmailLogRepository(db).CountByStatus(context.Background(), "cmp-1")
	require.NoError(t, err)
	assert.Equal(t, 4, sent)
	assert.Equal(t, 1, failed)
}
