// Package badge renders printable attendee badges.
package badge

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"registrationdesk/internal/domain"
)

//go:embed templates/badge.html
var templateFS embed.FS

// categoryClasses maps upper-cased category names to their pill style.
var categoryClasses = map[string]string{
	"VIP":     "category-VIP",
	"SPEAKER": "category-SPEAKER",
	"SPONSOR": "category-SPONSOR",
}

const (
	defaultCategoryClass = "category-default"
	defaultCategoryLabel = "Attendee"
)

type view struct {
	EventName        string
	Name             string
	Organization     string
	Designation      string
	CategoryClass    string
	CategoryLabel    string
	ConfirmationCode string
	QR               template.URL
}

// Renderer implements domain.BadgeRenderer with an embedded html/template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded badge template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/badge.html")
	if err != nil {
		return nil, fmt.Errorf("parse badge template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render returns the badge HTML document for data.
func (r *Renderer) Render(data domain.BadgeData) (string, error) {
	v := view{
		EventName:        data.EventName,
		Name:             strings.TrimSpace(data.FirstName + " " + data.LastName),
		Organization:     data.Organization,
		Designation:      data.Designation,
		CategoryClass:    CategoryClass(data.Category),
		CategoryLabel:    data.Category,
		ConfirmationCode: data.ConfirmationCode,
	}
	if v.CategoryLabel == "" {
		v.CategoryLabel = defaultCategoryLabel
	}
	// Only data URLs produced by the QR encoder are trusted as image sources.
	if strings.HasPrefix(data.QRDataURL, "data:image/png;base64,") {
		v.QR = template.URL(data.QRDataURL)
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}
	return buf.String(), nil
}

// CategoryClass returns the pill CSS class for a category.
func CategoryClass(category string) string {
	if class, ok := categoryClasses[strings.ToUpper(strings.TrimSpace(category))]; ok {
		return class
	}
	return defaultCategoryClass
}
