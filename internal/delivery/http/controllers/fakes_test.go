package controllers

import (
	"context"
	"io"
	"log/slog"

	"registrationdesk/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID    = "11111111-1111-1111-1111-111111111111"
	testContactID  = "22222222-2222-2222-2222-222222222222"
	testTemplateID = "33333333-3333-3333-3333-333333333333"
	testCampaignID = "44444444-4444-4444-4444-444444444444"
)

type fakeAuthService struct {
	token     string
	user      *domain.User
	err       error
	lastEmail string
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) EnsureAdmin(context.Context, string, string, string) error { return nil }

func (f *fakeAuthService) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeEventService struct {
	events     []*domain.EventSummary
	event      *domain.Event
	summary    *domain.EventSummary
	err        error
	lastCreate domain.CreateEventInput
	lastUpdate domain.EventUpdate
	lastID     string
}

func (f *fakeEventService) List(context.Context) ([]*domain.EventSummary, error) {
	return f.events, f.err
}

func (f *fakeEventService) Create(_ context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastCreate = in
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Get(_ context.Context, id string) (*domain.EventSummary, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeEventService) Update(_ context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastID = id
	f.lastUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

type fakeStatisticsService struct {
	stats *domain.EventStatistics
	err   error
}

func (f *fakeStatisticsService) Get(context.Context, string) (*domain.EventStatistics, error) {
	return f.stats, f.err
}

type fakeContactService struct {
	page       *domain.ContactPage
	overview   *domain.AttendeeOverview
	contact    *domain.Contact
	detail     *domain.ContactDetail
	csv        []byte
	rows       []domain.ContactExportRow
	err        error
	lastFilter domain.ContactFilter
	lastPage   domain.PaginationParams
	lastCreate domain.CreateContactInput
	lastUpdate domain.ContactUpdate
}

func (f *fakeContactService) List(_ context.Context, _ string, filter domain.ContactFilter, page domain.PaginationParams) (*domain.ContactPage, error) {
	f.lastFilter = filter
	f.lastPage = page
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeContactService) ListGrouped(_ context.Context, _ string, filter domain.ContactFilter) (*domain.GroupedContacts, error) {
	f.lastFilter = filter
	return nil, f.err
}

func (f *fakeContactService) AttendeeOverview(_ context.Context, _ string, filter domain.ContactFilter) (*domain.AttendeeOverview, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.overview, nil
}

func (f *fakeContactService) Create(_ context.Context, _ string, in domain.CreateContactInput) (*domain.Contact, error) {
	f.lastCreate = in
	if f.err != nil {
		return nil, f.err
	}
	return f.contact, nil
}

func (f *fakeContactService) Get(context.Context, string, string) (*domain.ContactDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeContactService) Update(_ context.Context, _, _ string, upd domain.ContactUpdate) (*domain.Contact, error) {
	f.lastUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return f.contact, nil
}

func (f *fakeContactService) Delete(context.Context, string, string) error { return f.err }

func (f *fakeContactService) ExportCSV(context.Context, string) ([]byte, error) {
	return f.csv, f.err
}

func (f *fakeContactService) ExportRows(context.Context, string) ([]domain.ContactExportRow, error) {
	return f.rows, f.err
}

type fakeImportService struct {
	result       *domain.ImportResult
	err          error
	lastFile     domain.ImportFile
	lastMapping  domain.FieldMapping
	lastCategory string
}

func (f *fakeImportService) Import(_ context.Context, _ string, file domain.ImportFile, mapping domain.FieldMapping, category string) (*domain.ImportResult, error) {
	f.lastFile = file
	f.lastMapping = mapping
	f.lastCategory = category
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDispatcher struct {
	result         *domain.DispatchResult
	err            error
	lastContactIDs []string
	lastTemplateID string
	lastCampaignID string
}

func (f *fakeDispatcher) SendToContacts(_ context.Context, _ string, contactIDs []string, templateID string) (*domain.DispatchResult, error) {
	f.lastContactIDs = contactIDs
	f.lastTemplateID = templateID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeDispatcher) SendCampaign(_ context.Context, _, campaignID string) (*domain.DispatchResult, error) {
	f.lastCampaignID = campaignID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTemplateService struct {
	template  *domain.EmailTemplate
	templates []*domain.EmailTemplate
	err       error
	lastInput domain.EmailTemplateInput
}

func (f *fakeTemplateService) List(context.Context, string) ([]*domain.EmailTemplate, error) {
	return f.templates, f.err
}

func (f *fakeTemplateService) Create(_ context.Context, _ string, in domain.EmailTemplateInput) (*domain.EmailTemplate, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

func (f *fakeTemplateService) Get(context.Context, string, string) (*domain.EmailTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

func (f *fakeTemplateService) Update(_ context.Context, _, _ string, in domain.EmailTemplateInput) (*domain.EmailTemplate, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

func (f *fakeTemplateService) Delete(context.Context, string, string) error { return f.err }

type fakeCampaignService struct {
	campaign  *domain.EmailCampaign
	err       error
	lastInput domain.CreateCampaignInput
}

func (f *fakeCampaignService) List(context.Context, string) ([]*domain.EmailCampaign, error) {
	return nil, f.err
}

func (f *fakeCampaignService) Create(_ context.Context, _ string, in domain.CreateCampaignInput) (*domain.EmailCampaign, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.campaign, nil
}

func (f *fakeCampaignService) Get(context.Context, string, string) (*domain.CampaignDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CampaignDetail{EmailCampaign: f.campaign}, nil
}

func (f *fakeCampaignService) Delete(context.Context, string, string) error { return f.err }

type fakeRegistrationService struct {
	page       *domain.RegistrationPage
	reg        *domain.Registration
	created    bool
	regs       []*domain.Registration
	stats      *domain.RegistrationStats
	csv        []byte
	err        error
	lastSlug   string
	lastToken  string
	lastInput  domain.RegistrationInput
	lastStatus domain.RegistrationStatus
}

func (f *fakeRegistrationService) Page(_ context.Context, slug, token string) (*domain.RegistrationPage, error) {
	f.lastSlug, f.lastToken = slug, token
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeRegistrationService) Register(_ context.Context, slug, token string, in domain.RegistrationInput) (*domain.Registration, bool, error) {
	f.lastSlug, f.lastToken, f.lastInput = slug, token, in
	if f.err != nil {
		return nil, false, f.err
	}
	return f.reg, f.created, nil
}

func (f *fakeRegistrationService) List(_ context.Context, _ string, status domain.RegistrationStatus, _ string) ([]*domain.Registration, error) {
	f.lastStatus = status
	return f.regs, f.err
}

func (f *fakeRegistrationService) Stats(context.Context, string) (*domain.RegistrationStats, error) {
	return f.stats, f.err
}

func (f *fakeRegistrationService) ExportCSV(context.Context, string) ([]byte, error) {
	return f.csv, f.err
}

type fakeBadgeService struct {
	generated *domain.BadgeGenerationResult
	sent      *domain.BadgeSendResult
	html      string
	template  *domain.BadgeTemplate
	err       error
	lastIDs   []string
	lastInput domain.BadgeTemplateInput
}

func (f *fakeBadgeService) Generate(_ context.Context, _ string, ids []string) (*domain.BadgeGenerationResult, error) {
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.generated, nil
}

func (f *fakeBadgeService) Send(context.Context, string) (*domain.BadgeSendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sent, nil
}

func (f *fakeBadgeService) Render(context.Context, string) (string, error) {
	return f.html, f.err
}

func (f *fakeBadgeService) GetTemplate(context.Context, string) (*domain.BadgeTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

func (f *fakeBadgeService) UpsertTemplate(_ context.Context, _ string, in domain.BadgeTemplateInput) (*domain.BadgeTemplate, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}
