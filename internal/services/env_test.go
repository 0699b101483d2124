package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"registrationdesk/internal/adapters/tabular"
	"registrationdesk/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testAppURL = "https://desk.example.com"

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store         *memStore
	events        *fakeEventRepo
	contacts      *fakeContactRepo
	registrations *fakeRegistrationRepo
	templates     *fakeTemplateRepo
	campaigns     *fakeCampaignRepo
	logs          *fakeLogRepo
	mailer        *fakeMailer
	badgeRenderer fakeBadgeRenderer

	eventSvc        domain.EventService
	importSvc       domain.ImportService
	contactSvc      domain.ContactService
	templateSvc     domain.EmailTemplateService
	campaignSvc     domain.CampaignService
	dispatcher      domain.EmailDispatcher
	registrationSvc domain.RegistrationService
	badgeSvc        domain.BadgeService
	statisticsSvc   domain.StatisticsService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	env := &testEnv{
		store:         store,
		events:        &fakeEventRepo{memStore: store},
		contacts:      &fakeContactRepo{memStore: store, failEmails: map[string]error{}},
		registrations: &fakeRegistrationRepo{memStore: store},
		templates:     &fakeTemplateRepo{store},
		campaigns:     &fakeCampaignRepo{store},
		logs:          &fakeLogRepo{store},
		mailer:        &fakeMailer{failFor: map[string]error{}},
		badgeRenderer: fakeBadgeRenderer{failFor: map[string]bool{}},
	}
	reader := &fakeSnapshotReader{store}
	timeout := time.Second

	env.eventSvc = NewEventService(env.events, timeout)
	env.importSvc = NewImportService(env.events, env.contacts, tabular.NewParser(), 1<<20, testLogger)
	env.contactSvc = NewContactService(env.events, env.contacts, env.logs, reader, timeout)
	env.templateSvc = NewEmailTemplateService(env.templates, timeout)
	env.campaignSvc = NewCampaignService(env.campaigns, env.templates, env.logs, timeout)
	env.dispatcher = NewEmailDispatcher(DispatcherDeps{
		Events:    env.events,
		Contacts:  env.contacts,
		Templates: env.templates,
		Campaigns: env.campaigns,
		Logs:      env.logs,
		Mailer:    env.mailer,
		Renderer:  fakeRenderer{},
	}, testAppURL, testLogger)
	env.registrationSvc = NewRegistrationService(env.events, env.contacts, env.registrations, timeout)
	env.badgeSvc = NewBadgeService(BadgeDeps{
		Events:        env.events,
		Registrations: env.registrations,
		Templates:     &fakeBadgeTemplateRepo{store},
		Badges:        &fakeBadgeRepo{store},
		QR:            fakeQR{},
		Renderer:      env.badgeRenderer,
		Mailer:        env.mailer,
	}, testAppURL, testLogger)
	env.statisticsSvc = NewStatisticsService(reader)
	return env
}

func (env *testEnv) createEvent(t *testing.T, name string) *domain.Event {
	t.Helper()
	start := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	e, err := env.eventSvc.Create(context.Background(), domain.CreateEventInput{
		Name:      name,
		Venue:     strPtr("Convention Center"),
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return e
}

func (env *testEnv) addContact(t *testing.T, eventID, first, email string, category *string) *domain.Contact {
	t.Helper()
	c, err := env.contactSvc.Create(context.Background(), eventID, domain.CreateContactInput{
		FirstName: first,
		LastName:  "Tester",
		Email:     email,
		Category:  category,
	})
	require.NoError(t, err)
	return c
}

func (env *testEnv) createTemplate(t *testing.T, eventID string, typ domain.TemplateType) *domain.EmailTemplate {
	t.Helper()
	tpl, err := env.templateSvc.Create(context.Background(), eventID, domain.EmailTemplateInput{
		Name:     strPtr("Invite"),
		Type:     &typ,
		Subject:  strPtr("You're invited to {{eventName}}"),
		BodyHTML: strPtr("<p>Hi {{firstName}}, register at {{registrationLink}}</p>"),
	})
	require.NoError(t, err)
	return tpl
}
