package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"holidaymatch/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Each notification type has <name>_subject.txt, <name>.html and <name>.txt.
type templateRenderer struct {
	html map[string]*template.Template
	text map[string]*texttemplate.Template
}

// NewTemplateRenderer parses every embedded template once and returns the renderer.
func NewTemplateRenderer() (domain.EmailTemplateRenderer, error) {
	r := &templateRenderer{
		html: make(map[string]*template.Template),
		text: make(map[string]*texttemplate.Template),
	}
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		raw, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(name, ".html") {
			t, err := template.New(name).Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			r.html[name] = t
			continue
		}
		t, err := texttemplate.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.text[name] = t
	}
	return r, nil
}

// Render executes the named template (e.g. "invitation_received") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = r.renderText(templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.renderHTML(templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.renderText(templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) renderHTML(name string, data any) (string, error) {
	t, ok := r.html[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) renderText(name string, data any) (string, error) {
	t, ok := r.text[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
