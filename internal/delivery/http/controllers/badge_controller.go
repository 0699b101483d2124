package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/domain"
)

const badgeNotFoundHTML = `<!DOCTYPE html><html><head><title>Badge not found</title></head>` +
	`<body style="font-family:sans-serif;text-align:center;padding:60px"><h1>Badge not found</h1>` +
	`<p>Check the confirmation code and try again.</p></body></html>`

// GenerateBadgesRequest is the optional request body for POST /events/{eventID}/badges/generate.
// Without registration_ids every confirmed registration is processed.
type GenerateBadgesRequest struct {
	RegistrationIDs []string `json:"registration_ids"`
}

// Validate implements Validator.
func (g *GenerateBadgesRequest) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.RegistrationIDs, validation.By(validIDs)),
	)
}

// BadgeTemplateRequest is the request body for PUT /events/{eventID}/badges/template.
type BadgeTemplateRequest struct {
	Name          string          `json:"name"`
	DesignJSON    json.RawMessage `json:"design_json" swaggertype:"object"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	BackgroundURL *string         `json:"background_url"`
}

// Validate implements Validator.
func (b *BadgeTemplateRequest) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Name, validation.Length(0, 200)),
		validation.Field(&b.Width, validation.Min(0), validation.Max(4000)),
		validation.Field(&b.Height, validation.Min(0), validation.Max(4000)),
		validation.Field(&b.BackgroundURL, is.URL),
	)
}

type BadgeController struct {
	Logger  *slog.Logger
	Service domain.BadgeService
}

func NewBadgeController(logger *slog.Logger, svc domain.BadgeService) *BadgeController {
	return &BadgeController{
		Logger:  logger,
		Service: svc,
	}
}

// GenerateBadges godoc
// @Summary Generate badges
// @Description Builds the QR payload and badge for each confirmed registration. One failing registration does not stop the others.
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body GenerateBadgesRequest false "Restrict to these registrations"
// @Success 200 {object} helpers.APIResponse "data contains generated, failed and total"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/badges/generate [post]
func (c *BadgeController) GenerateBadges(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req GenerateBadgesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	if !helpers.Validate(w, &req) {
		return
	}
	result, err := c.Service.Generate(r.Context(), eventID, req.RegistrationIDs)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// SendBadges godoc
// @Summary Email badge links
// @Description Sends every confirmed registration with a generated badge a link to it.
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains sent, failed and total"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/badges/send [post]
func (c *BadgeController) SendBadges(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	result, err := c.Service.Send(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// GetTemplate godoc
// @Summary Get the badge template
// @Description Returns the event's badge template, creating the default one when missing.
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the badge template"
// @Router /events/{eventID}/badges/template [get]
func (c *BadgeController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	tpl, err := c.Service.GetTemplate(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpl)
}

// UpdateTemplate godoc
// @Summary Save the badge template
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body BadgeTemplateRequest true "Badge template"
// @Success 200 {object} helpers.APIResponse "data contains the badge template"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/badges/template [put]
func (c *BadgeController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req BadgeTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tpl, err := c.Service.UpsertTemplate(r.Context(), eventID, domain.BadgeTemplateInput{
		Name:          req.Name,
		DesignJSON:    req.DesignJSON,
		Width:         req.Width,
		Height:        req.Height,
		BackgroundURL: req.BackgroundURL,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpl)
}

// ViewBadge godoc
// @Summary Public badge view
// @Description Printable HTML badge for a confirmation code.
// @Tags public
// @Produce html
// @Param confirmationCode path string true "Confirmation code"
// @Success 200 {string} string "HTML document"
// @Failure 404 {string} string "HTML document"
// @Router /badges/{confirmationCode} [get]
func (c *BadgeController) ViewBadge(w http.ResponseWriter, r *http.Request) {
	page, err := c.Service.Render(r.Context(), r.PathValue("confirmationCode"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteHTML(w, http.StatusNotFound, badgeNotFoundHTML)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteHTML(w, http.StatusInternalServerError, "<!DOCTYPE html><html><body><h1>Something went wrong</h1></body></html>")
		return
	}
	helpers.WriteHTML(w, http.StatusOK, page)
}
