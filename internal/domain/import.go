package domain

import "context"

// Import field names recognised by the row normalizer.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldOrganization = "organization"
	FieldDesignation  = "designation"
	FieldCategory     = "category"
)

// MaxSurfacedImportErrors bounds the row errors returned to the caller.
const MaxSurfacedImportErrors = 10

// Row is one parsed spreadsheet row keyed by header.
type Row map[string]string

// FieldMapping maps a target field name to the source header that holds it.
type FieldMapping map[string]string

// NormalizedRow is a candidate contact produced from a Row.
type NormalizedRow struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Organization *string
	Designation  *string
	Category     *string
}

// ImportFile is an uploaded tabular file.
type ImportFile struct {
	Name string
	Data []byte
}

// TabularParser turns an uploaded file into header-keyed rows.
// Returns ErrUnsupportedFormat for unknown file types.
type TabularParser interface {
	Parse(file ImportFile) ([]Row, error)
}

// ImportSummary counts import outcomes.
type ImportSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// ImportResult is returned by a bulk import.
type ImportResult struct {
	Success     bool          `json:"success"`
	ImportBatch string        `json:"import_batch"`
	Summary     ImportSummary `json:"summary"`
	Errors      []string      `json:"errors"`
}

// ImportService imports contacts from tabular files.
type ImportService interface {
	Import(ctx context.Context, eventID string, file ImportFile, mapping FieldMapping, defaultCategory string) (*ImportResult, error)
}
