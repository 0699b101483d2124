package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrationdesk/internal/domain"
)

func TestEmailDispatcher_SendToContacts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	fixed := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	env.dispatcher.(*emailDispatcher).now = func() time.Time { return fixed }

	e := env.createEvent(t, "Tech Conference 2026")
	tpl := env.createTemplate(t, e.ID, domain.TemplateTypeInvitation)
	ana := env.addContact(t, e.ID, "Ana", "ana@example.com", nil)
	bo := env.addContact(t, e.ID, "Bo", "bo@example.com", nil)
	env.mailer.failFor["bo@example.com"] = errors.New("mailbox unavailable")

	res, err := env.dispatcher.SendToContacts(ctx, e.ID, []string{ana.ID, bo.ID}, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.DispatchResult{SentCount: 1, FailedCount: 1, Total: 2}, res)

	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "You're invited to Tech Conference 2026", msg.Subject)
	assert.Equal(t, "<p>Hi Ana, register at https://desk.example.com/register/tech-conference-2026</p>", msg.HTML)

	got, err := env.contacts.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusInvited, got.Status)
	got, err = env.contacts.GetByID(ctx, bo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusImported, got.Status)

	campaigns, err := env.campaigns.ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	c := campaigns[0]
	assert.Equal(t, "Invite - 1/20/2026", c.Name)
	assert.Equal(t, domain.CampaignStatusCompleted, c.Status)
	assert.Equal(t, 2, c.TotalRecipients)
	assert.Equal(t, 1, c.SentCount)
	assert.Equal(t, 1, c.FailedCount)

	logs, err := env.logs.ListByCampaign(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	byContact := map[string]*domain.EmailLog{}
	for _, l := range logs {
		byContact[l.ContactID] = l
	}
	assert.Equal(t, domain.EmailLogStatusSent, byContact[ana.ID].Status)
	assert.NotNil(t, byContact[ana.ID].SentAt)
	assert.Equal(t, "msg-1", *byContact[ana.ID].ProviderMessageID)
	assert.Equal(t, domain.EmailLogStatusFailed, byContact[bo.ID].Status)
	assert.Equal(t, "mailbox unavailable", *byContact[bo.ID].ErrorMessage)
}

func TestEmailDispatcher_SendToContacts_NonInvitationKeepsStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := env.createEvent(t, "Summit")
	tpl := env.createTemplate(t, e.ID, domain.TemplateTypeReminder)
	ana := env.addContact(t, e.ID, "Ana", "ana@example.com", nil)

	_, err := env.dispatcher.SendToContacts(ctx, e.ID, []string{ana.ID}, tpl.ID)
	require.NoError(t, err)
	got, err := env.contacts.GetByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusImported, got.Status)
}

func TestEmailDispatcher_SendToContacts_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := env.createEvent(t, "Summit")
	other := env.createEvent(t, "Other")
	foreign := env.createTemplate(t, other.ID, domain.TemplateTypeInvitation)
	ana := env.addContact(t, e.ID, "Ana", "ana@example.com", nil)

	_, err := env.dispatcher.SendToContacts(ctx, e.ID, nil, foreign.ID)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.dispatcher.SendToContacts(ctx, e.ID, []string{ana.ID}, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.dispatcher.SendToContacts(ctx, e.ID, []string{ana.ID}, "missing")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.dispatcher.SendToContacts(ctx, e.ID, []string{ana.ID}, foreign.ID)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, env.mailer.sent)
}

func TestEmailDispatcher_SendCampaign_ResendSkipsLoggedContacts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := env.createEvent(t, "Summit")
	tpl := env.createTemplate(t, e.ID, domain.TemplateTypeInvitation)
	env.addContact(t, e.ID, "Ana", "ana@example.com", strPtr("VIP"))
	env.addContact(t, e.ID, "Bo", "bo@example.com", strPtr("VIP"))
	env.addContact(t, e.ID, "Cy", "cy@example.com", nil)

	c, err := env.campaignSvc.Create(ctx, e.ID, domain.CreateCampaignInput{
		Name: "VIP wave", TemplateID: tpl.ID, RecipientFilter: domain.RecipientFilter{Category: "VIP"},
	})
	require.NoError(t, err)

	res, err := env.dispatcher.SendCampaign(ctx, e.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.DispatchResult{SentCount: 2, Total: 2}, res)

	res, err = env.dispatcher.SendCampaign(ctx, e.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.DispatchResult{Total: 2}, res, "total counts every recipient, logged or not")
	assert.Len(t, env.mailer.sent, 2)

	env.addContact(t, e.ID, "Di", "di@example.com", strPtr("VIP"))
	res, err = env.dispatcher.SendCampaign(ctx, e.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.DispatchResult{SentCount: 1, Total: 3}, res)

	stored, err := env.campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusCompleted, stored.Status)
	assert.Equal(t, 3, stored.TotalRecipients)
	assert.Equal(t, 3, stored.SentCount)
	assert.NotNil(t, stored.SentAt)
}

func TestEmailDispatcher_SendCampaign_OtherEvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := env.createEvent(t, "Summit")
	other := env.createEvent(t, "Other")
	tpl := env.createTemplate(t, e.ID, domain.TemplateTypeInvitation)
	c, err := env.campaignSvc.Create(ctx, e.ID, domain.CreateCampaignInput{Name: "Wave", TemplateID: tpl.ID})
	require.NoError(t, err)

	_, err = env.dispatcher.SendCampaign(ctx, other.ID, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.dispatcher.SendCampaign(ctx, e.ID, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmailDispatcher_Variables(t *testing.T) {
	d := &emailDispatcher{appURL: testAppURL}
	e := &domain.Event{
		Name:      "Summit",
		Slug:      "summit",
		StartDate: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}
	c := &domain.Contact{
		FirstName:    "Ana",
		LastName:     "Lima",
		Email:        "ana@example.com",
		Registration: &domain.RegistrationSummary{ConfirmationCode: "ABC123XYZ0"},
	}

	vars := d.variables(e, c)
	assert.Equal(t, "3/5/2026", vars["eventDate"])
	assert.Equal(t, "", vars["eventVenue"])
	assert.Equal(t, "ABC123XYZ0", vars["confirmationCode"])
	assert.Equal(t, "https://desk.example.com/register/summit", vars["registrationLink"])
}
