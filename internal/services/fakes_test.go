package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"registrationdesk/internal/domain"
)

// memStore is the shared in-memory backing of the fake repositories so that
// services wired together observe each other's writes.
type memStore struct {
	seq            int
	events         map[string]*domain.Event
	eventOrder     []string
	contacts       map[string]*domain.Contact
	contactOrder   []string
	registrations  map[string]*domain.Registration
	regOrder       []string
	templates      map[string]*domain.EmailTemplate
	templateOrder  []string
	campaigns      map[string]*domain.EmailCampaign
	campaignOrder  []string
	logs           []*domain.EmailLog
	badgeTemplates map[string]*domain.BadgeTemplate
	badges         map[string]*domain.Badge
	users          map[string]*domain.User
}

func newMemStore() *memStore {
	return &memStore{
		events:         make(map[string]*domain.Event),
		contacts:       make(map[string]*domain.Contact),
		registrations:  make(map[string]*domain.Registration),
		templates:      make(map[string]*domain.EmailTemplate),
		campaigns:      make(map[string]*domain.EmailCampaign),
		badgeTemplates: make(map[string]*domain.BadgeTemplate),
		badges:         make(map[string]*domain.Badge),
		users:          make(map[string]*domain.User),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func reversed(order []string) []string {
	out := make([]string, len(order))
	for i, v := range order {
		out[len(order)-1-i] = v
	}
	return out
}

// --- events ---

type fakeEventRepo struct {
	*memStore
	err error // if set, Create returns this error
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	for _, other := range f.events {
		if other.Slug == e.Slug {
			return fmt.Errorf("event slug %s: %w", e.Slug, domain.ErrConflict)
		}
	}
	e.ID = f.nextID("ev")
	cp := *e
	f.events[e.ID] = &cp
	f.eventOrder = append(f.eventOrder, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.EventSummary, error) {
	var out []*domain.EventSummary
	for _, id := range reversed(f.eventOrder) {
		counts, _ := f.Counts(ctx, id)
		cp := *f.events[id]
		out = append(out, &domain.EventSummary{Event: &cp, Counts: counts})
	}
	return out, nil
}

func (f *fakeEventRepo) Counts(ctx context.Context, id string) (domain.EventCounts, error) {
	var c domain.EventCounts
	for _, ct := range f.contacts {
		if ct.EventID == id {
			c.Contacts++
		}
	}
	for _, r := range f.registrations {
		if r.EventID == id {
			c.Registrations++
		}
	}
	for _, t := range f.templates {
		if t.EventID == id {
			c.Templates++
		}
	}
	for _, m := range f.campaigns {
		if m.EventID == id {
			c.Campaigns++
		}
	}
	return c, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	f.eventOrder = removeID(f.eventOrder, id)
	return nil
}

// --- contacts ---

type fakeContactRepo struct {
	*memStore
	failEmails map[string]error // Create returns the error for these emails
}

func (f *fakeContactRepo) view(c *domain.Contact) *domain.Contact {
	cp := *c
	cp.Registration = nil
	for _, r := range f.registrations {
		if r.ContactID == c.ID {
			cp.Registration = &domain.RegistrationSummary{
				ID:               r.ID,
				Status:           r.Status,
				ConfirmationCode: r.ConfirmationCode,
				RegisteredAt:     r.RegisteredAt,
				BadgeGenerated:   r.BadgeGenerated,
			}
		}
	}
	return &cp
}

func (f *fakeContactRepo) emailTaken(eventID, email, exceptID string) bool {
	for _, c := range f.contacts {
		if c.EventID == eventID && c.Email == email && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if err, ok := f.failEmails[c.Email]; ok {
		return err
	}
	if f.emailTaken(c.EventID, c.Email, "") {
		return fmt.Errorf("contact %s: %w", c.Email, domain.ErrConflict)
	}
	c.ID = f.nextID("ct")
	cp := *c
	cp.Registration = nil
	f.contacts[c.ID] = &cp
	f.contactOrder = append(f.contactOrder, c.ID)
	return nil
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	if c, ok := f.contacts[id]; ok {
		return f.view(c), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeContactRepo) GetByInviteToken(ctx context.Context, token string) (*domain.Contact, error) {
	for _, c := range f.contacts {
		if c.InviteToken != nil && *c.InviteToken == token {
			return f.view(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeContactRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Contact, error) {
	for _, c := range f.contacts {
		if c.EventID == eventID && c.Email == email {
			return f.view(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func matchesFilter(c *domain.Contact, filter domain.ContactFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		hit := false
		for _, v := range []string{c.FirstName, c.LastName, c.Email, deref(c.Organization)} {
			if strings.Contains(strings.ToLower(v), q) {
				hit = true
			}
		}
		if !hit {
			return false
		}
	}
	if filter.Category != "" && deref(c.Category) != filter.Category {
		return false
	}
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	return true
}

func (f *fakeContactRepo) inEvent(eventID string, order []string) []*domain.Contact {
	var out []*domain.Contact
	for _, id := range order {
		if c := f.contacts[id]; c.EventID == eventID {
			out = append(out, f.view(c))
		}
	}
	return out
}

func (f *fakeContactRepo) List(ctx context.Context, eventID string, filter domain.ContactFilter, page domain.PaginationParams) ([]*domain.Contact, int, error) {
	var matched []*domain.Contact
	for _, c := range f.inEvent(eventID, reversed(f.contactOrder)) {
		if matchesFilter(c, filter) {
			matched = append(matched, c)
		}
	}
	start := min(page.Offset(), len(matched))
	end := min(start+page.PageSize, len(matched))
	return matched[start:end], len(matched), nil
}

func (f *fakeContactRepo) ListForGrouping(ctx context.Context, eventID string, filter domain.ContactFilter) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for _, c := range f.inEvent(eventID, reversed(f.contactOrder)) {
		if matchesFilter(c, filter) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Category, out[j].Category
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return out, nil
}

func (f *fakeContactRepo) ListForExport(ctx context.Context, eventID string) ([]*domain.Contact, error) {
	return f.inEvent(eventID, f.contactOrder), nil
}

func (f *fakeContactRepo) ListByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.Contact, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*domain.Contact
	for _, c := range f.inEvent(eventID, f.contactOrder) {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) ListByRecipientFilter(ctx context.Context, eventID string, rf domain.RecipientFilter) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for _, c := range f.inEvent(eventID, f.contactOrder) {
		if !rf.All {
			if rf.Category != "" && deref(c.Category) != rf.Category {
				continue
			}
			if rf.RegistrationStatus != "" && (c.Registration == nil || c.Registration.Status != rf.RegistrationStatus) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContactRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	return len(f.inEvent(eventID, f.contactOrder)), nil
}

func (f *fakeContactRepo) Update(ctx context.Context, c *domain.Contact) error {
	if _, ok := f.contacts[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if f.emailTaken(c.EventID, c.Email, c.ID) {
		return fmt.Errorf("contact %s: %w", c.Email, domain.ErrConflict)
	}
	cp := *c
	cp.Registration = nil
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeContactRepo) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	c, ok := f.contacts[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeContactRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.contacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.contacts, id)
	f.contactOrder = removeID(f.contactOrder, id)
	for rid, r := range f.registrations {
		if r.ContactID == id {
			delete(f.registrations, rid)
			f.regOrder = removeID(f.regOrder, rid)
		}
	}
	logs := f.logs[:0]
	for _, l := range f.logs {
		if l.ContactID != id {
			logs = append(logs, l)
		}
	}
	f.logs = logs
	return nil
}

// --- registrations ---

type fakeRegistrationRepo struct {
	*memStore
	conflicts int // number of Create calls that fail with ErrConflict first
}

func (f *fakeRegistrationRepo) withContact(r *domain.Registration) *domain.Registration {
	cp := *r
	if c, ok := f.contacts[r.ContactID]; ok {
		cc := *c
		cp.Contact = &cc
	}
	return &cp
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("registration %s: %w", reg.ConfirmationCode, domain.ErrConflict)
	}
	for _, r := range f.registrations {
		if r.ConfirmationCode == reg.ConfirmationCode || r.ContactID == reg.ContactID {
			return fmt.Errorf("registration %s: %w", reg.ConfirmationCode, domain.ErrConflict)
		}
	}
	reg.ID = f.nextID("rg")
	cp := *reg
	cp.Contact = nil
	f.registrations[reg.ID] = &cp
	f.regOrder = append(f.regOrder, reg.ID)
	return nil
}

func (f *fakeRegistrationRepo) GetByContactID(ctx context.Context, contactID string) (*domain.Registration, error) {
	for _, r := range f.registrations {
		if r.ContactID == contactID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetByConfirmationCode(ctx context.Context, code string) (*domain.Registration, error) {
	for _, r := range f.registrations {
		if r.ConfirmationCode == code {
			return f.withContact(r), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.registrations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.registrations, id)
	f.regOrder = removeID(f.regOrder, id)
	return nil
}

func (f *fakeRegistrationRepo) list(order []string, keep func(*domain.Registration) bool) []*domain.Registration {
	var out []*domain.Registration
	for _, id := range order {
		if r := f.registrations[id]; keep(r) {
			out = append(out, f.withContact(r))
		}
	}
	return out
}

func (f *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID string, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	return f.list(reversed(f.regOrder), func(r *domain.Registration) bool {
		return r.EventID == eventID && (status == "" || r.Status == status)
	}), nil
}

func (f *fakeRegistrationRepo) ListForExport(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return f.list(f.regOrder, func(r *domain.Registration) bool { return r.EventID == eventID }), nil
}

func (f *fakeRegistrationRepo) ListConfirmed(ctx context.Context, eventID string, ids []string) ([]*domain.Registration, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return f.list(f.regOrder, func(r *domain.Registration) bool {
		return r.EventID == eventID && r.Status == domain.RegistrationStatusConfirmed && (len(ids) == 0 || want[r.ID])
	}), nil
}

func (f *fakeRegistrationRepo) ListWithBadges(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return f.list(f.regOrder, func(r *domain.Registration) bool {
		return r.EventID == eventID && r.Status == domain.RegistrationStatusConfirmed && r.BadgeGenerated
	}), nil
}

func (f *fakeRegistrationRepo) MarkBadgeGenerated(ctx context.Context, id string) error {
	r, ok := f.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.BadgeGenerated = true
	return nil
}

// --- email templates, campaigns, logs ---

type fakeTemplateRepo struct{ *memStore }

func (f *fakeTemplateRepo) Create(ctx context.Context, t *domain.EmailTemplate) error {
	t.ID = f.nextID("tp")
	cp := *t
	f.templates[t.ID] = &cp
	f.templateOrder = append(f.templateOrder, t.ID)
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	if t, ok := f.templates[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTemplateRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.EmailTemplate, error) {
	var out []*domain.EmailTemplate
	for _, id := range reversed(f.templateOrder) {
		if t := f.templates[id]; t.EventID == eventID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t *domain.EmailTemplate) error {
	if _, ok := f.templates[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	f.templates[t.ID] = &cp
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.templates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.templates, id)
	f.templateOrder = removeID(f.templateOrder, id)
	return nil
}

type fakeCampaignRepo struct{ *memStore }

func (f *fakeCampaignRepo) Create(ctx context.Context, c *domain.EmailCampaign) error {
	c.ID = f.nextID("cm")
	cp := *c
	cp.Template = nil
	f.campaigns[c.ID] = &cp
	f.campaignOrder = append(f.campaignOrder, c.ID)
	return nil
}

func (f *fakeCampaignRepo) GetByID(ctx context.Context, id string) (*domain.EmailCampaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	if t, ok := f.templates[c.TemplateID]; ok {
		tc := *t
		cp.Template = &tc
	}
	return &cp, nil
}

func (f *fakeCampaignRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.EmailCampaign, error) {
	var out []*domain.EmailCampaign
	for _, id := range reversed(f.campaignOrder) {
		if c := f.campaigns[id]; c.EventID == eventID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) UpdateProgress(ctx context.Context, c *domain.EmailCampaign) error {
	stored, ok := f.campaigns[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = c.Status
	stored.TotalRecipients = c.TotalRecipients
	stored.SentCount = c.SentCount
	stored.FailedCount = c.FailedCount
	stored.SentAt = c.SentAt
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

func (f *fakeCampaignRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.campaigns[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.campaigns, id)
	f.campaignOrder = removeID(f.campaignOrder, id)
	return nil
}

type fakeLogRepo struct{ *memStore }

func (f *fakeLogRepo) Create(ctx context.Context, l *domain.EmailLog) error {
	for _, other := range f.logs {
		if other.CampaignID == l.CampaignID && other.ContactID == l.ContactID {
			return fmt.Errorf("email log: %w", domain.ErrConflict)
		}
	}
	l.ID = f.nextID("lg")
	cp := *l
	f.logs = append(f.logs, &cp)
	return nil
}

func (f *fakeLogRepo) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*domain.EmailLog, error) {
	var out []*domain.EmailLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].CampaignID == campaignID {
			cp := *f.logs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) ListByContact(ctx context.Context, contactID string) ([]*domain.EmailLog, error) {
	var out []*domain.EmailLog
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].ContactID == contactID {
			cp := *f.logs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) LoggedContactIDs(ctx context.Context, campaignID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, l := range f.logs {
		if l.CampaignID == campaignID {
			out[l.ContactID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeLogRepo) CountByStatus(ctx context.Context, campaignID string) (int, int, error) {
	var sent, failed int
	for _, l := range f.logs {
		if l.CampaignID != campaignID {
			continue
		}
		switch l.Status {
		case domain.EmailLogStatusSent:
			sent++
		case domain.EmailLogStatusFailed:
			failed++
		}
	}
	return sent, failed, nil
}

// --- badges ---

type fakeBadgeTemplateRepo struct{ *memStore }

func (f *fakeBadgeTemplateRepo) GetByEvent(ctx context.Context, eventID string) (*domain.BadgeTemplate, error) {
	if t, ok := f.badgeTemplates[eventID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBadgeTemplateRepo) Upsert(ctx context.Context, t *domain.BadgeTemplate) error {
	if existing, ok := f.badgeTemplates[t.EventID]; ok {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	} else {
		t.ID = f.nextID("bt")
	}
	cp := *t
	f.badgeTemplates[t.EventID] = &cp
	return nil
}

type fakeBadgeRepo struct{ *memStore }

func (f *fakeBadgeRepo) Upsert(ctx context.Context, b *domain.Badge) error {
	if existing, ok := f.badges[b.RegistrationID]; ok {
		b.ID = existing.ID
	} else {
		b.ID = f.nextID("bd")
	}
	cp := *b
	f.badges[b.RegistrationID] = &cp
	return nil
}

// --- users ---

type fakeUserRepo struct {
	*memStore
	err error // if set, GetByEmail returns this error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, other := range f.users {
		if other.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrConflict)
		}
	}
	u.ID = f.nextID("us")
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// --- batched readers ---

type fakeSnapshotReader struct{ *memStore }

func (f *fakeSnapshotReader) event(eventID string) (*domain.Event, error) {
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeSnapshotReader) ReadAttendeeSnapshot(ctx context.Context, eventID string, filter domain.ContactFilter) (*domain.AttendeeSnapshot, error) {
	e, err := f.event(eventID)
	if err != nil {
		return nil, err
	}
	contacts, _ := (&fakeContactRepo{memStore: f.memStore}).ListForGrouping(ctx, eventID, filter)
	templates, _ := (&fakeTemplateRepo{f.memStore}).ListByEvent(ctx, eventID)
	return &domain.AttendeeSnapshot{Event: e, Contacts: contacts, Templates: templates}, nil
}

func (f *fakeSnapshotReader) ReadStatistics(ctx context.Context, eventID string) (*domain.StatisticsSnapshot, error) {
	e, err := f.event(eventID)
	if err != nil {
		return nil, err
	}
	snap := &domain.StatisticsSnapshot{Event: e}
	for _, id := range f.contactOrder {
		if c := f.contacts[id]; c.EventID == eventID {
			snap.Contacts = append(snap.Contacts, domain.ContactStat{Category: c.Category, Status: c.Status})
		}
	}
	for _, l := range f.logs {
		if m, ok := f.campaigns[l.CampaignID]; !ok || m.EventID != eventID {
			continue
		}
		switch l.Status {
		case domain.EmailLogStatusSent:
			snap.EmailsSent++
		case domain.EmailLogStatusFailed:
			snap.EmailsFailed++
		}
	}
	snap.Campaigns, _ = (&fakeCampaignRepo{f.memStore}).ListByEvent(ctx, eventID)
	return snap, nil
}

// --- transports and renderers ---

type fakeMailer struct {
	sent    []*domain.OutgoingEmail
	failFor map[string]error
}

func (m *fakeMailer) Send(ctx context.Context, msg *domain.OutgoingEmail) (string, error) {
	if err, ok := m.failFor[msg.To]; ok {
		return "", err
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

// fakeRenderer substitutes {{key}} placeholders and wraps the body with header and footer.
type fakeRenderer struct{}

func (fakeRenderer) RenderSubject(subject string, vars map[string]string) string {
	return substitute(subject, vars)
}

func (fakeRenderer) RenderBody(body string, header, footer *string, vars map[string]string) string {
	return deref(header) + substitute(body, vars) + deref(footer)
}

func substitute(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

type fakeQR struct{ err error }

func (q fakeQR) Encode(content string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	return "data:image/png;base64," + content, nil
}

type fakeBadgeRenderer struct {
	failFor map[string]bool // confirmation codes that fail to render
}

func (r fakeBadgeRenderer) Render(d domain.BadgeData) (string, error) {
	if r.failFor[d.ConfirmationCode] {
		return "", fmt.Errorf("render %s: boom", d.ConfirmationCode)
	}
	return fmt.Sprintf("<html>%s %s %s %s</html>", d.EventName, d.FirstName, d.LastName, d.QRDataURL), nil
}

type fakeParser struct {
	rows []domain.Row
	err  error
}

func (p fakeParser) Parse(file domain.ImportFile) ([]domain.Row, error) {
	return p.rows, p.err
}

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID, email string) (string, error) { return "token-" + userID, nil }
