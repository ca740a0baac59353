package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"campusevents/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// messageTemplates holds the parsed subject, html, and text templates for one
// message kind.
type messageTemplates struct {
	subject *template.Template
	html    *htmltemplate.Template
	text    *template.Template
}

type templateRenderer struct {
	messages map[string]*messageTemplates
}

// NewTemplateRenderer parses the embedded template set. Message names are
// derived from the *_subject.txt files; each name must also have .html and
// .txt bodies. Templates are embedded at build time, so a malformed one
// panics at startup rather than surfacing per send.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}
	messages := make(map[string]*messageTemplates)
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), "_subject.txt")
		if !ok {
			continue
		}
		messages[name] = &messageTemplates{
			subject: template.Must(template.ParseFS(templateFS, "templates/"+name+"_subject.txt")),
			html:    htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/"+name+".html")),
			text:    template.Must(template.ParseFS(templateFS, "templates/"+name+".txt")),
		}
	}
	return &templateRenderer{messages: messages}
}

// Render executes the named message's templates (e.g. "registration_confirmed")
// with data and returns the subject, html, and text bodies.
func (r *templateRenderer) Render(name string, data any) (string, string, string, error) {
	m, ok := r.messages[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := m.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject := strings.TrimSpace(buf.String())

	buf.Reset()
	if err := m.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody := buf.String()

	buf.Reset()
	if err := m.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
