package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/domain"
)

var errInvalidID = errors.New("must be a valid UUID")

func validIDs(v any) error {
	ids, _ := v.([]string)
	for _, id := range ids {
		if !helpers.IsUUID(id) {
			return errInvalidID
		}
	}
	return nil
}

// SendEmailRequest is the request body for POST /events/{eventID}/attendees/send-email.
type SendEmailRequest struct {
	ContactIDs []string `json:"contact_ids"`
	TemplateID string   `json:"template_id"`
}

// Validate implements Validator.
func (s *SendEmailRequest) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ContactIDs, validation.Required.Error("select at least one contact"), validation.By(validIDs)),
		validation.Field(&s.TemplateID, validation.Required.Error("select an email template"), validation.By(func(any) error {
			if s.TemplateID != "" && !helpers.IsUUID(s.TemplateID) {
				return errInvalidID
			}
			return nil
		})),
	)
}

// DispatchSuccessResponse is the success response envelope for bulk sends (200).
type DispatchSuccessResponse struct {
	Data  *domain.DispatchResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type AttendeeController struct {
	Logger     *slog.Logger
	Contacts   domain.ContactService
	Dispatcher domain.EmailDispatcher
}

func NewAttendeeController(logger *slog.Logger, contacts domain.ContactService, dispatcher domain.EmailDispatcher) *AttendeeController {
	return &AttendeeController{
		Logger:     logger,
		Contacts:   contacts,
		Dispatcher: dispatcher,
	}
}

// GetAttendees godoc
// @Summary Attendees grouped by category
// @Description The event, its email templates and its contacts grouped by category with status counts.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Search text"
// @Param category query string false "Category"
// @Param status query string false "Contact status"
// @Success 200 {object} helpers.APIResponse "data contains event, templates, groups, status_counts and total"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees [get]
func (c *AttendeeController) GetAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	filter, err := contactFilterFromQuery(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	overview, err := c.Contacts.AttendeeOverview(r.Context(), eventID, filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, overview)
}

// SendEmail godoc
// @Summary Send a template to selected attendees
// @Description Sends sequentially and logs every attempt under a new audit campaign. Individual failures are counted, not returned as errors. Invitation sends move IMPORTED contacts to INVITED.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SendEmailRequest true "Recipients and template"
// @Success 200 {object} controllers.DispatchSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed or bad_request (template not found)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees/send-email [post]
func (c *AttendeeController) SendEmail(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req SendEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Dispatcher.SendToContacts(r.Context(), eventID, req.ContactIDs, req.TemplateID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
