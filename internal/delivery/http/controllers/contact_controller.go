package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"registrationdesk/internal/delivery/http/helpers"
	"registrationdesk/internal/domain"
)

var errInvalidStatus = errors.New("must be one of IMPORTED, INVITED, REGISTERED, CANCELLED")

func validContactStatus(v any) error {
	var s domain.ContactStatus
	switch t := v.(type) {
	case domain.ContactStatus:
		s = t
	case *domain.ContactStatus:
		if t == nil {
			return nil
		}
		s = *t
	}
	if s == "" || s.Valid() {
		return nil
	}
	return errInvalidStatus
}

// contactFilterFromQuery reads search, category and status from the query string.
func contactFilterFromQuery(r *http.Request) (domain.ContactFilter, error) {
	q := r.URL.Query()
	f := domain.ContactFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Status:   domain.ContactStatus(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("status %w", errInvalidStatus)
	}
	return f, nil
}

// CreateContactRequest is the request body for POST /events/{eventID}/contacts.
type CreateContactRequest struct {
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	Email        string               `json:"email"`
	Phone        *string              `json:"phone"`
	Organization *string              `json:"organization"`
	Designation  *string              `json:"designation"`
	Category     *string              `json:"category"`
	Status       domain.ContactStatus `json:"status"`
}

// Validate implements Validator.
func (c *CreateContactRequest) Validate() error {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	return validation.ValidateStruct(c,
		validation.Field(&c.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.LastName, validation.Length(0, 100)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Status, validation.By(validContactStatus)),
	)
}

// UpdateContactRequest is the request body for PUT /events/{eventID}/contacts/{contactID}.
// All fields optional; omitted fields are unchanged.
type UpdateContactRequest struct {
	FirstName    *string               `json:"first_name"`
	LastName     *string               `json:"last_name"`
	Email        *string               `json:"email"`
	Phone        *string               `json:"phone"`
	Organization *string               `json:"organization"`
	Designation  *string               `json:"designation"`
	Category     *string               `json:"category"`
	Status       *domain.ContactStatus `json:"status"`
}

// Validate implements Validator.
func (u *UpdateContactRequest) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&u.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&u.Status, validation.By(validContactStatus)),
	)
}

// ContactListResponse is the data of GET /events/{eventID}/contacts.
type ContactListResponse struct {
	Contacts   []*domain.Contact      `json:"contacts"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type ContactController struct {
	Logger        *slog.Logger
	Service       domain.ContactService
	Importer      domain.ImportService
	MaxUploadSize int64
}

func NewContactController(logger *slog.Logger, svc domain.ContactService, importer domain.ImportService, maxUploadSize int64) *ContactController {
	return &ContactController{
		Logger:        logger,
		Service:       svc,
		Importer:      importer,
		MaxUploadSize: maxUploadSize,
	}
}

// ListContacts godoc
// @Summary List contacts
// @Description Paginated contacts of an event, newest first. Search matches name, email and organization.
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Search text"
// @Param category query string false "Category"
// @Param status query string false "Contact status"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 50)"
// @Success 200 {object} helpers.APIResponse "data contains contacts and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts [get]
func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	filter, err := contactFilterFromQuery(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	params := helpers.ParsePagination(r)
	page, err := c.Service.List(r.Context(), eventID, filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	contacts := page.Contacts
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ContactListResponse{
		Contacts:   contacts,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, page.Total),
	})
}

// CreateContact godoc
// @Summary Add a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateContactRequest true "Contact"
// @Success 201 {object} helpers.APIResponse "data contains the contact"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in event)"
// @Router /events/{eventID}/contacts [post]
func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	contact, err := c.Service.Create(r.Context(), eventID, domain.CreateContactInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Designation:  req.Designation,
		Category:     req.Category,
		Status:       req.Status,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, contact)
}

// GetContact godoc
// @Summary Get a contact
// @Description The contact with its registration, email history and event.
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param contactID path string true "Contact ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the contact detail"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts/{contactID} [get]
func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	contactID, ok := helpers.PathUUID(w, r, "contactID")
	if !ok {
		return
	}
	detail, err := c.Service.Get(r.Context(), eventID, contactID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "contact not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateContact godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param contactID path string true "Contact ID (UUID)"
// @Param body body UpdateContactRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the contact"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/contacts/{contactID} [put]
func (c *ContactController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	contactID, ok := helpers.PathUUID(w, r, "contactID")
	if !ok {
		return
	}
	var req UpdateContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	contact, err := c.Service.Update(r.Context(), eventID, contactID, domain.ContactUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Designation:  req.Designation,
		Category:     req.Category,
		Status:       req.Status,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "contact not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, contact)
}

// DeleteContact godoc
// @Summary Delete a contact
// @Description Removes the contact with its registration and email logs.
// @Tags contacts
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param contactID path string true "Contact ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts/{contactID} [delete]
func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	contactID, ok := helpers.PathUUID(w, r, "contactID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), eventID, contactID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "contact not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportContacts godoc
// @Summary Import contacts from CSV or Excel
// @Description Multipart upload. Rows without email or first name and duplicate emails are skipped; other row failures are reported (first 10).
// @Tags contacts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param file formData file true "CSV, XLSX or XLS file"
// @Param mappings formData string false "JSON object mapping field name to column header"
// @Param category formData string false "Category applied to every row"
// @Success 200 {object} helpers.APIResponse "data contains the import summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts/import [post]
func (c *ContactController) ImportContacts(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if c.MaxUploadSize > 0 {
		// Leave room for the other form fields and multipart framing.
		r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadSize+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "no file provided")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read file")
		return
	}

	var mapping domain.FieldMapping
	if raw := r.FormValue("mappings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "mappings must be a JSON object of strings")
			return
		}
	}

	result, err := c.Importer.Import(r.Context(), eventID, domain.ImportFile{Name: header.Filename, Data: data},
		mapping, strings.TrimSpace(r.FormValue("category")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ExportContacts godoc
// @Summary Export contacts
// @Description CSV (default) or JSON rows with registration status and time.
// @Tags contacts
// @Produce text/csv
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param format query string false "csv or json"
// @Success 200 {string} string "CSV document"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts/export [get]
func (c *ContactController) ExportContacts(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "json" {
		rows, err := c.Service.ExportRows(r.Context(), eventID)
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
			return
		}
		if rows == nil {
			rows = []domain.ContactExportRow{}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, rows)
		return
	}
	body, err := c.Service.ExportCSV(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	helpers.WriteCSV(w, "contacts-"+eventID+".csv", body)
}
