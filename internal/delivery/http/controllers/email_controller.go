package controllers

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/domain"
)

func templateTypeRule() validation.Rule {
	types := make([]any, len(domain.TemplateTypes))
	for i, t := range domain.TemplateTypes {
		types[i] = t
	}
	return validation.In(types...)
}

// EmailTemplateRequest is the request body for creating and updating templates.
// On update omitted fields are unchanged.
type EmailTemplateRequest struct {
	Name       *string              `json:"name"`
	Type       *domain.TemplateType `json:"type"`
	Subject    *string              `json:"subject"`
	BodyHTML   *string              `json:"body_html"`
	HeaderHTML *string              `json:"header_html"`
	FooterHTML *string              `json:"footer_html"`
	Variables  []string             `json:"variables"`

	partial bool
}

// Validate implements Validator. Creation requires name, type, subject and body.
func (t *EmailTemplateRequest) Validate() error {
	var presence validation.Rule = validation.Required
	if t.partial {
		presence = validation.NilOrNotEmpty
	}
	return validation.ValidateStruct(t,
		validation.Field(&t.Name, presence, validation.Length(1, 200)),
		validation.Field(&t.Type, presence, templateTypeRule()),
		validation.Field(&t.Subject, presence, validation.Length(1, 500)),
		validation.Field(&t.BodyHTML, presence),
	)
}

func (t *EmailTemplateRequest) input() domain.EmailTemplateInput {
	return domain.EmailTemplateInput{
		Name:       t.Name,
		Type:       t.Type,
		Subject:    t.Subject,
		BodyHTML:   t.BodyHTML,
		HeaderHTML: t.HeaderHTML,
		FooterHTML: t.FooterHTML,
		Variables:  t.Variables,
	}
}

// CreateCampaignRequest is the request body for POST /events/{eventID}/emails/campaigns.
type CreateCampaignRequest struct {
	Name            string                 `json:"name"`
	TemplateID      string                 `json:"template_id"`
	RecipientFilter domain.RecipientFilter `json:"recipient_filter"`
	ScheduledAt     *time.Time             `json:"scheduled_at"`
}

// Validate implements Validator.
func (c *CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.TemplateID, validation.Required, validation.By(func(any) error {
			if !helpers.IsUUID(c.TemplateID) {
				return errInvalidID
			}
			return nil
		})),
		validation.Field(&c.RecipientFilter, validation.By(func(any) error {
			if rs := c.RecipientFilter.RegistrationStatus; rs != "" && !rs.Valid() {
				return errInvalidRegistrationStatus
			}
			return nil
		})),
	)
}

type EmailController struct {
	Logger     *slog.Logger
	Templates  domain.EmailTemplateService
	Campaigns  domain.CampaignService
	Dispatcher domain.EmailDispatcher
}

func NewEmailController(logger *slog.Logger, templates domain.EmailTemplateService, campaigns domain.CampaignService, dispatcher domain.EmailDispatcher) *EmailController {
	return &EmailController{
		Logger:     logger,
		Templates:  templates,
		Campaigns:  campaigns,
		Dispatcher: dispatcher,
	}
}

// ListTemplates godoc
// @Summary List email templates
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of templates"
// @Router /events/{eventID}/emails/templates [get]
func (c *EmailController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	templates, err := c.Templates.List(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	if templates == nil {
		templates = []*domain.EmailTemplate{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, templates)
}

// CreateTemplate godoc
// @Summary Create an email template
// @Description Subject, header, body and footer may contain {{variable}} placeholders.
// @Tags emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body EmailTemplateRequest true "Template"
// @Success 201 {object} helpers.APIResponse "data contains the template"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/emails/templates [post]
func (c *EmailController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req EmailTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tpl, err := c.Templates.Create(r.Context(), eventID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tpl)
}

// GetTemplate godoc
// @Summary Get an email template
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the template"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/templates/{templateID} [get]
func (c *EmailController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	templateID, ok := helpers.PathUUID(w, r, "templateID")
	if !ok {
		return
	}
	tpl, err := c.Templates.Get(r.Context(), eventID, templateID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "template not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpl)
}

// UpdateTemplate godoc
// @Summary Update an email template
// @Tags emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param templateID path string true "Template ID (UUID)"
// @Param body body EmailTemplateRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the template"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/templates/{templateID} [put]
func (c *EmailController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	templateID, ok := helpers.PathUUID(w, r, "templateID")
	if !ok {
		return
	}
	req := EmailTemplateRequest{partial: true}
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tpl, err := c.Templates.Update(r.Context(), eventID, templateID, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "template not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete an email template
// @Tags emails
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param templateID path string true "Template ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/templates/{templateID} [delete]
func (c *EmailController) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	templateID, ok := helpers.PathUUID(w, r, "templateID")
	if !ok {
		return
	}
	if err := c.Templates.Delete(r.Context(), eventID, templateID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCampaigns godoc
// @Summary List email campaigns
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of campaigns with their template"
// @Router /events/{eventID}/emails/campaigns [get]
func (c *EmailController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	campaigns, err := c.Campaigns.List(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	if campaigns == nil {
		campaigns = []*domain.EmailCampaign{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, campaigns)
}

// CreateCampaign godoc
// @Summary Create an email campaign
// @Description Creates a DRAFT campaign. scheduled_at is stored only; sending is always explicit.
// @Tags emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateCampaignRequest true "Campaign"
// @Success 201 {object} helpers.APIResponse "data contains the campaign"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/emails/campaigns [post]
func (c *EmailController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	campaign, err := c.Campaigns.Create(r.Context(), eventID, domain.CreateCampaignInput{
		Name:            req.Name,
		TemplateID:      req.TemplateID,
		RecipientFilter: req.RecipientFilter,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, campaign)
}

// GetCampaign godoc
// @Summary Get an email campaign
// @Description The campaign with its template and the latest 100 send logs.
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param campaignID path string true "Campaign ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the campaign and logs"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/campaigns/{campaignID} [get]
func (c *EmailController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	campaignID, ok := helpers.PathUUID(w, r, "campaignID")
	if !ok {
		return
	}
	detail, err := c.Campaigns.Get(r.Context(), eventID, campaignID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "campaign not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// DeleteCampaign godoc
// @Summary Delete an email campaign
// @Tags emails
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param campaignID path string true "Campaign ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/campaigns/{campaignID} [delete]
func (c *EmailController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	campaignID, ok := helpers.PathUUID(w, r, "campaignID")
	if !ok {
		return
	}
	if err := c.Campaigns.Delete(r.Context(), eventID, campaignID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "campaign not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendCampaign godoc
// @Summary Send an email campaign
// @Description Sends to every contact matching the campaign's recipient filter that has not been logged for this campaign yet.
// @Tags emails
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param campaignID path string true "Campaign ID (UUID)"
// @Success 200 {object} controllers.DispatchSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/emails/campaigns/{campaignID}/send [post]
func (c *EmailController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	campaignID, ok := helpers.PathUUID(w, r, "campaignID")
	if !ok {
		return
	}
	result, err := c.Dispatcher.SendCampaign(r.Context(), eventID, campaignID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "campaign not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
