package services

import (
	"strings"

	"registrationdesk/internal/domain"
)

// fieldFallbacks lists the header spellings tried after the mapped (or canonical) header.
var fieldFallbacks = map[string][]string{
	domain.FieldFirstName:    {"First Name", "first_name"},
	domain.FieldLastName:     {"Last Name", "last_name"},
	domain.FieldEmail:        {"Email", "email"},
	domain.FieldPhone:        {"Phone", "phone"},
	domain.FieldOrganization: {"Organization", "Company"},
	domain.FieldDesignation:  {"Designation", "Title"},
	domain.FieldCategory:     {"Category", "Type"},
}

// NormalizeRow maps a parsed row onto contact fields. ok is false when the row lacks
// an email or a first name.
func NormalizeRow(row domain.Row, mapping domain.FieldMapping, defaultCategory string) (n domain.NormalizedRow, ok bool) {
	n.FirstName = lookupField(row, mapping, domain.FieldFirstName)
	n.LastName = lookupField(row, mapping, domain.FieldLastName)
	n.Email = strings.ToLower(lookupField(row, mapping, domain.FieldEmail))
	n.Phone = optional(lookupField(row, mapping, domain.FieldPhone))
	n.Organization = optional(lookupField(row, mapping, domain.FieldOrganization))
	n.Designation = optional(lookupField(row, mapping, domain.FieldDesignation))
	if c := strings.TrimSpace(defaultCategory); c != "" {
		n.Category = &c
	} else {
		n.Category = optional(lookupField(row, mapping, domain.FieldCategory))
	}
	return n, n.Email != "" && n.FirstName != ""
}

func lookupField(row domain.Row, mapping domain.FieldMapping, field string) string {
	primary := field
	if h, ok := mapping[field]; ok && h != "" {
		primary = h
	}
	if v := strings.TrimSpace(row[primary]); v != "" {
		return v
	}
	for _, h := range fieldFallbacks[field] {
		if v := strings.TrimSpace(row[h]); v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
