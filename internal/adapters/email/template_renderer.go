package email

import (
	"regexp"
	"strings"

	"registrationdesk/internal/domain"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

const wrapperHead = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }
    .email-wrapper { max-width: 600px; margin: 0 auto; }
    .email-header { padding: 20px; }
    .email-body { padding: 20px; }
    .email-footer { padding: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; }
  </style>
</head>
<body>
  <div class="email-wrapper">
`

const wrapperTail = `  </div>
</body>
</html>`

// templateRenderer implements domain.TemplateRenderer with plain {{name}} substitution.
// Output is not HTML-escaped; template authors are trusted.
type templateRenderer struct{}

// NewTemplateRenderer returns the placeholder renderer used for campaign and badge emails.
func NewTemplateRenderer() domain.TemplateRenderer {
	return templateRenderer{}
}

// RenderSubject replaces placeholders whose key is present in vars and leaves the others untouched.
func (templateRenderer) RenderSubject(subject string, vars map[string]string) string {
	return substituteKnown(subject, vars)
}

// RenderBody renders the body like a subject, while header and footer placeholders
// without a value resolve to the empty string. The parts are wrapped in the email layout;
// empty header or footer sections are omitted.
func (templateRenderer) RenderBody(body string, header, footer *string, vars map[string]string) string {
	var sb strings.Builder
	sb.WriteString(wrapperHead)
	if h := substituteAll(header, vars); h != "" {
		sb.WriteString(`    <div class="email-header">`)
		sb.WriteString(h)
		sb.WriteString("</div>\n")
	}
	sb.WriteString(`    <div class="email-body">`)
	sb.WriteString(substituteKnown(body, vars))
	sb.WriteString("</div>\n")
	if f := substituteAll(footer, vars); f != "" {
		sb.WriteString(`    <div class="email-footer">`)
		sb.WriteString(f)
		sb.WriteString("</div>\n")
	}
	sb.WriteString(wrapperTail)
	return sb.String()
}

func substituteKnown(s string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := vars[m[2:len(m)-2]]; ok {
			return v
		}
		return m
	})
}

func substituteAll(s *string, vars map[string]string) string {
	if s == nil || *s == "" {
		return ""
	}
	return placeholderRe.ReplaceAllStringFunc(*s, func(m string) string {
		return vars[m[2:len(m)-2]]
	})
}
