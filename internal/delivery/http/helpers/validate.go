package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Validator is implemented by request DTOs that support validation.
// Validate returns nil when valid; validation.Errors are reported field by field.
type Validator interface {
	Validate() error
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and, if dest implements Validator, runs Validate(). On decode or validation failure
// it writes a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "request body is required")
			return false
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	return Validate(w, dest)
}

// Validate runs dest's Validate method if it has one and writes a 400 on failure.
func Validate(w http.ResponseWriter, dest any) bool {
	v, ok := dest.(Validator)
	if !ok {
		return true
	}
	err := v.Validate()
	if err == nil {
		return true
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		WriteJSONErrorDetails(w, http.StatusBadRequest, ErrCodeValidationFailed, "validation failed", fieldErrs)
		return false
	}
	WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	return false
}

// PathUUID returns the named path value, writing a 400 and returning false when it is
// missing or not a UUID.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	if !uuidRegex.MatchString(v) {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return v, true
}

// IsUUID reports whether s is a canonical UUID.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}
