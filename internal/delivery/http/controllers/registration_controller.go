package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/domain"
)

var errInvalidRegistrationStatus = errors.New("must be one of PENDING, CONFIRMED, CANCELLED")

// RegisterRequest is the public registration form for POST /register/{eventSlug}.
type RegisterRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Designation  string `json:"designation"`
	Token        string `json:"token"`
}

// Validate implements Validator. Every field except token is required.
func (req *RegisterRequest) Validate() error {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	return validation.ValidateStruct(req,
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Organization, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Designation, validation.Required, validation.Length(1, 200)),
	)
}

// RegisterResponse is the data of a successful public registration.
type RegisterResponse struct {
	Success          bool   `json:"success"`
	ConfirmationCode string `json:"confirmation_code"`
	RegistrationID   string `json:"registration_id"`
}

// AlreadyRegisteredDetails is returned in error.details with a 409.
type AlreadyRegisteredDetails struct {
	ConfirmationCode string `json:"confirmation_code"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRegistrations godoc
// @Summary List registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "PENDING, CONFIRMED or CANCELLED"
// @Param search query string false "Name, email, organization or confirmation code"
// @Success 200 {object} helpers.APIResponse "data is an array of registrations with contacts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	status := domain.RegistrationStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && !status.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status "+errInvalidRegistrationStatus.Error())
		return
	}
	regs, err := c.Service.List(r.Context(), eventID, status, r.URL.Query().Get("search"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// GetStats godoc
// @Summary Registration statistics
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the counts and conversion rate"
// @Router /events/{eventID}/registrations/stats [get]
func (c *RegistrationController) GetStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	stats, err := c.Service.Stats(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ExportRegistrations godoc
// @Summary Export registrations as CSV
// @Tags registrations
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {string} string "CSV document"
// @Router /events/{eventID}/registrations/export [get]
func (c *RegistrationController) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	body, err := c.Service.ExportCSV(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteCSV(w, "registrations-"+eventID+".csv", body)
}

// GetRegistrationPage godoc
// @Summary Public registration page data
// @Description The event and, when a valid invite token is given, the invitee's details for pre-filling the form.
// @Tags public
// @Produce json
// @Param eventSlug path string true "Event slug"
// @Param token query string false "Invite token"
// @Success 200 {object} helpers.APIResponse "data contains event and contact"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /register/{eventSlug} [get]
func (c *RegistrationController) GetRegistrationPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("eventSlug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventSlug")
		return
	}
	page, err := c.Service.Page(r.Context(), slug, strings.TrimSpace(r.URL.Query().Get("token")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found or invitation invalid")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Register godoc
// @Summary Register for an event
// @Description Public self-registration. Returns 201 with a confirmation code, or 409 with the existing code when the email is already registered.
// @Tags public
// @Accept json
// @Produce json
// @Param eventSlug path string true "Event slug"
// @Param token query string false "Invite token, used when the body has none"
// @Param body body RegisterRequest true "Registration form"
// @Success 201 {object} helpers.APIResponse "data contains success, confirmation_code and registration_id"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; error.details.confirmation_code"
// @Router /register/{eventSlug} [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("eventSlug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventSlug")
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	// The invite link carries the token in the query; a body token takes precedence.
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	reg, created, err := c.Service.Register(r.Context(), slug, token, domain.RegistrationInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Designation:  req.Designation,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found or not accepting registrations")
		return
	}
	if !created {
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeConflict, "already registered",
			AlreadyRegisteredDetails{ConfirmationCode: reg.ConfirmationCode})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RegisterResponse{
		Success:          true,
		ConfirmationCode: reg.ConfirmationCode,
		RegistrationID:   reg.ID,
	})
}
